package database

import (
	"database/sql"

	"github.com/insiderbookings/backoffice/internal/models"
)

// AddOnRepository handles database operations for the add-on catalog and
// its per-hotel overrides
type AddOnRepository struct {
	db DB
}

// NewAddOnRepository creates a new AddOnRepository
func NewAddOnRepository(db DB) *AddOnRepository {
	return &AddOnRepository{db: db}
}

const addOnColumns = `id, slug, name, description, icon, subtitle, footnote,
	   type, price, default_qty, meta, created_at, updated_at`

// GetByID retrieves an add-on with its options
func (r *AddOnRepository) GetByID(id int64) (*models.AddOn, error) {
	query := `SELECT ` + addOnColumns + ` FROM add_ons WHERE id = $1`

	addOn, err := r.scanAddOn(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}

	options, err := r.listOptions(addOn.ID)
	if err != nil {
		return nil, err
	}
	addOn.Options = options

	return addOn, nil
}

// GetOption retrieves a single option
func (r *AddOnRepository) GetOption(id int64) (*models.AddOnOption, error) {
	query := `SELECT id, add_on_id, name, price FROM add_on_options WHERE id = $1`

	opt := &models.AddOnOption{}
	err := r.db.QueryRow(query, id).Scan(&opt.ID, &opt.AddOnID, &opt.Name, &opt.Price)
	if err != nil {
		return nil, err
	}
	return opt, nil
}

// List retrieves the full catalog with options attached
func (r *AddOnRepository) List() ([]models.AddOn, error) {
	query := `SELECT ` + addOnColumns + ` FROM add_ons ORDER BY id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addOns := []models.AddOn{}
	for rows.Next() {
		addOn, err := r.scanAddOn(rows)
		if err != nil {
			return nil, err
		}
		addOns = append(addOns, *addOn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range addOns {
		options, err := r.listOptions(addOns[i].ID)
		if err != nil {
			return nil, err
		}
		addOns[i].Options = options
	}

	return addOns, nil
}

// ListForHotel resolves the catalog against a hotel's overrides. Only
// add-ons the hotel has activated are returned, with overridden prices and
// copy applied on top of the base row.
func (r *AddOnRepository) ListForHotel(hotelID int64) ([]models.CatalogAddOn, error) {
	query := `
		SELECT a.id, a.slug,
			   COALESCE(ha.name, a.name),
			   COALESCE(ha.description, a.description),
			   COALESCE(ha.price, a.price),
			   COALESCE(ha.icon, a.icon, ''),
			   COALESCE(ha.subtitle, a.subtitle),
			   COALESCE(ha.footnote, a.footnote),
			   a.type,
			   COALESCE(ha.default_qty, a.default_qty)
		FROM hotel_add_ons ha
		JOIN add_ons a ON a.id = ha.add_on_id
		WHERE ha.hotel_id = $1 AND ha.active = TRUE
		ORDER BY a.id
	`

	rows, err := r.db.Query(query, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	catalog := []models.CatalogAddOn{}
	for rows.Next() {
		var entry models.CatalogAddOn
		var description, subtitle, footnote sql.NullString
		var defaultQty sql.NullInt64

		err := rows.Scan(
			&entry.ID, &entry.Slug, &entry.Title, &description, &entry.Price,
			&entry.IconName, &subtitle, &footnote, &entry.Type, &defaultQty,
		)
		if err != nil {
			return nil, err
		}

		if description.Valid {
			entry.Description = &description.String
		}
		if subtitle.Valid {
			entry.Subtitle = &subtitle.String
		}
		if footnote.Valid {
			entry.Footnote = &footnote.String
		}
		if defaultQty.Valid {
			v := int(defaultQty.Int64)
			entry.DefaultQty = &v
		}
		entry.Options = []models.CatalogOption{}

		catalog = append(catalog, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range catalog {
		options, err := r.listHotelOptions(hotelID, catalog[i].ID)
		if err != nil {
			return nil, err
		}
		catalog[i].Options = options
	}

	return catalog, nil
}

// EffectivePrice returns the hotel's price for an add-on (and option if
// given), falling back to catalog values when no override exists.
func (r *AddOnRepository) EffectivePrice(hotelID, addOnID int64, optionID *int64) (float64, error) {
	if optionID != nil {
		query := `
			SELECT COALESCE(hao.price, o.price)
			FROM add_on_options o
			LEFT JOIN hotel_add_ons ha
				ON ha.add_on_id = o.add_on_id AND ha.hotel_id = $1
			LEFT JOIN hotel_add_on_options hao
				ON hao.hotel_add_on_id = ha.id AND hao.add_on_option_id = o.id AND hao.active = TRUE
			WHERE o.id = $2 AND o.add_on_id = $3
		`

		var price float64
		err := r.db.QueryRow(query, hotelID, *optionID, addOnID).Scan(&price)
		return price, err
	}

	query := `
		SELECT COALESCE(ha.price, a.price)
		FROM add_ons a
		LEFT JOIN hotel_add_ons ha ON ha.add_on_id = a.id AND ha.hotel_id = $1
		WHERE a.id = $2
	`

	var price float64
	err := r.db.QueryRow(query, hotelID, addOnID).Scan(&price)
	return price, err
}

// SetHotelAddOn upserts a hotel's override row for an add-on
func (r *AddOnRepository) SetHotelAddOn(override *models.HotelAddOn) error {
	query := `
		INSERT INTO hotel_add_ons (
			hotel_id, add_on_id, active, price, default_qty,
			name, description, icon, subtitle, footnote
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (hotel_id, add_on_id) DO UPDATE
		SET active = EXCLUDED.active, price = EXCLUDED.price,
			default_qty = EXCLUDED.default_qty, name = EXCLUDED.name,
			description = EXCLUDED.description, icon = EXCLUDED.icon,
			subtitle = EXCLUDED.subtitle, footnote = EXCLUDED.footnote
		RETURNING id
	`

	return r.db.QueryRow(
		query,
		override.HotelID, override.AddOnID, override.Active, override.Price,
		override.DefaultQty, override.Name, override.Description, override.Icon,
		override.Subtitle, override.Footnote,
	).Scan(&override.ID)
}

func (r *AddOnRepository) listOptions(addOnID int64) ([]models.AddOnOption, error) {
	query := `SELECT id, add_on_id, name, price FROM add_on_options
		WHERE add_on_id = $1 ORDER BY id`

	rows, err := r.db.Query(query, addOnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []models.AddOnOption{}
	for rows.Next() {
		var opt models.AddOnOption
		if err := rows.Scan(&opt.ID, &opt.AddOnID, &opt.Name, &opt.Price); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}

	return options, rows.Err()
}

func (r *AddOnRepository) listHotelOptions(hotelID, addOnID int64) ([]models.CatalogOption, error) {
	query := `
		SELECT o.id, o.name, COALESCE(hao.price, o.price)
		FROM add_on_options o
		LEFT JOIN hotel_add_ons ha
			ON ha.add_on_id = o.add_on_id AND ha.hotel_id = $1
		LEFT JOIN hotel_add_on_options hao
			ON hao.hotel_add_on_id = ha.id AND hao.add_on_option_id = o.id AND hao.active = TRUE
		WHERE o.add_on_id = $2
		ORDER BY o.id
	`

	rows, err := r.db.Query(query, hotelID, addOnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []models.CatalogOption{}
	for rows.Next() {
		var opt models.CatalogOption
		if err := rows.Scan(&opt.ID, &opt.Label, &opt.Price); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}

	return options, rows.Err()
}

func (r *AddOnRepository) scanAddOn(row scanner) (*models.AddOn, error) {
	addOn := &models.AddOn{}
	var description, icon, subtitle, footnote sql.NullString
	var defaultQty sql.NullInt64
	var meta []byte

	err := row.Scan(
		&addOn.ID, &addOn.Slug, &addOn.Name, &description, &icon, &subtitle,
		&footnote, &addOn.Type, &addOn.Price, &defaultQty, &meta,
		&addOn.CreatedAt, &addOn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		addOn.Description = &description.String
	}
	if icon.Valid {
		addOn.Icon = &icon.String
	}
	if subtitle.Valid {
		addOn.Subtitle = &subtitle.String
	}
	if footnote.Valid {
		addOn.Footnote = &footnote.String
	}
	if defaultQty.Valid {
		v := int(defaultQty.Int64)
		addOn.DefaultQty = &v
	}
	if len(meta) > 0 {
		addOn.Meta = meta
	}

	return addOn, nil
}
