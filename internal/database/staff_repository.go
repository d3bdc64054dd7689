package database

import (
	"database/sql"

	"github.com/insiderbookings/backoffice/internal/models"
)

// StaffRepository handles database operations for staff, staff_roles and
// hotel_staff tables
type StaffRepository struct {
	db DB
}

// NewStaffRepository creates a new StaffRepository
func NewStaffRepository(db DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create inserts a new staff member
func (r *StaffRepository) Create(staff *models.Staff) error {
	query := `
		INSERT INTO staff (staff_role_id, name, email, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		staff.RoleID, staff.Name, staff.Email, staff.PasswordHash, staff.IsActive,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
}

// RegisterWithHotels creates the staff account, its hotel links and the
// per-hotel default discount codes in one transaction, so a failure on any
// hotel leaves nothing behind.
func (r *StaffRepository) RegisterWithHotels(staff *models.Staff, links []*models.HotelStaff, codes []*models.DiscountCode) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRow(
		`INSERT INTO staff (staff_role_id, name, email, password_hash, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		staff.RoleID, staff.Name, staff.Email, staff.PasswordHash, staff.IsActive,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
	if err != nil {
		return err
	}

	for _, link := range links {
		link.StaffID = staff.ID
		err = tx.QueryRow(
			`INSERT INTO hotel_staff (hotel_id, staff_id, staff_code, is_primary, since)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			link.HotelID, link.StaffID, link.StaffCode, link.IsPrimary, link.Since,
		).Scan(&link.ID, &link.CreatedAt)
		if err != nil {
			return err
		}
	}

	for _, code := range codes {
		code.StaffID = staff.ID
		err = tx.QueryRow(
			`INSERT INTO discount_codes (
				code, staff_id, hotel_id, percentage, special_price,
				starts_at, ends_at, max_uses, active
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at`,
			code.Code, code.StaffID, code.HotelID, code.Percentage, code.SpecialPrice,
			code.StartsAt, code.EndsAt, code.MaxUses, code.Active,
		).Scan(&code.ID, &code.CreatedAt, &code.UpdatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a staff member with their role joined
func (r *StaffRepository) GetByID(id int64) (*models.Staff, error) {
	query := `
		SELECT s.id, s.staff_role_id, s.name, s.email, s.password_hash, s.is_active,
			   s.created_at, s.updated_at,
			   r.name, r.default_discount_pct, r.commission_pct
		FROM staff s
		JOIN staff_roles r ON r.id = s.staff_role_id
		WHERE s.id = $1
	`

	return r.scanStaff(r.db.QueryRow(query, id))
}

// GetByEmail retrieves a staff member by email with their role joined
func (r *StaffRepository) GetByEmail(email string) (*models.Staff, error) {
	query := `
		SELECT s.id, s.staff_role_id, s.name, s.email, s.password_hash, s.is_active,
			   s.created_at, s.updated_at,
			   r.name, r.default_discount_pct, r.commission_pct
		FROM staff s
		JOIN staff_roles r ON r.id = s.staff_role_id
		WHERE LOWER(s.email) = LOWER($1)
	`

	return r.scanStaff(r.db.QueryRow(query, email))
}

// GetRole retrieves a staff role by ID
func (r *StaffRepository) GetRole(id int64) (*models.StaffRole, error) {
	query := `
		SELECT id, name, default_discount_pct, commission_pct
		FROM staff_roles
		WHERE id = $1
	`

	role := &models.StaffRole{}
	err := r.db.QueryRow(query, id).Scan(
		&role.ID, &role.Name, &role.DefaultDiscountPct, &role.CommissionPct,
	)
	if err != nil {
		return nil, err
	}
	return role, nil
}

// ListRoles retrieves every staff role
func (r *StaffRepository) ListRoles() ([]models.StaffRole, error) {
	query := `
		SELECT id, name, default_discount_pct, commission_pct
		FROM staff_roles
		ORDER BY id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := []models.StaffRole{}
	for rows.Next() {
		var role models.StaffRole
		if err := rows.Scan(&role.ID, &role.Name, &role.DefaultDiscountPct, &role.CommissionPct); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}

	return roles, rows.Err()
}

// LinkHotel attaches a staff member to a hotel with their front-desk code
func (r *StaffRepository) LinkHotel(link *models.HotelStaff) error {
	query := `
		INSERT INTO hotel_staff (hotel_id, staff_id, staff_code, is_primary, since)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	return r.db.QueryRow(
		query,
		link.HotelID, link.StaffID, link.StaffCode, link.IsPrimary, link.Since,
	).Scan(&link.ID, &link.CreatedAt)
}

// StaffCodeExists reports whether a staff code is already taken at a hotel
func (r *StaffRepository) StaffCodeExists(hotelID int64, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM hotel_staff WHERE hotel_id = $1 AND staff_code = $2)`

	var exists bool
	err := r.db.QueryRow(query, hotelID, code).Scan(&exists)
	return exists, err
}

// GetByHotelAndCode resolves a front-desk staff code to the staff member
func (r *StaffRepository) GetByHotelAndCode(hotelID int64, code string) (*models.Staff, error) {
	query := `
		SELECT s.id, s.staff_role_id, s.name, s.email, s.password_hash, s.is_active,
			   s.created_at, s.updated_at,
			   r.name, r.default_discount_pct, r.commission_pct
		FROM hotel_staff hs
		JOIN staff s ON s.id = hs.staff_id
		JOIN staff_roles r ON r.id = s.staff_role_id
		WHERE hs.hotel_id = $1 AND hs.staff_code = $2
	`

	return r.scanStaff(r.db.QueryRow(query, hotelID, code))
}

// ResolveStaffCode looks a front-desk code up across all hotels and returns
// the discount its role grants plus the issuing staff member and hotel
func (r *StaffRepository) ResolveStaffCode(code string) (*models.StaffCodeInfo, error) {
	query := `
		SELECT r.default_discount_pct, s.name,
			   h.id, h.name, h.image, h.city, h.country
		FROM hotel_staff hs
		JOIN staff s ON s.id = hs.staff_id
		JOIN staff_roles r ON r.id = s.staff_role_id
		JOIN hotels h ON h.id = hs.hotel_id
		WHERE hs.staff_code = $1 AND s.is_active = TRUE
	`

	info := &models.StaffCodeInfo{}
	var image, city, country sql.NullString

	err := r.db.QueryRow(query, code).Scan(
		&info.Percentage, &info.StaffName,
		&info.HotelID, &info.HotelName, &image, &city, &country,
	)
	if err != nil {
		return nil, err
	}

	if image.Valid {
		info.HotelImage = &image.String
	}
	if city.Valid {
		info.City = &city.String
	}
	if country.Valid {
		info.Country = &country.String
	}

	return info, nil
}

// ListHotels retrieves the hotels a staff member is attached to
func (r *StaffRepository) ListHotels(staffID int64) ([]models.StaffHotelLink, error) {
	query := `
		SELECT hs.hotel_id, h.name, h.image, h.city, h.country,
			   hs.staff_code, hs.is_primary
		FROM hotel_staff hs
		JOIN hotels h ON h.id = hs.hotel_id
		WHERE hs.staff_id = $1
		ORDER BY hs.is_primary DESC, h.name
	`

	rows, err := r.db.Query(query, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []models.StaffHotelLink{}
	for rows.Next() {
		var link models.StaffHotelLink
		var image, city, country sql.NullString

		err := rows.Scan(
			&link.HotelID, &link.HotelName, &image, &city, &country,
			&link.StaffCode, &link.IsPrimary,
		)
		if err != nil {
			return nil, err
		}

		if image.Valid {
			link.Image = &image.String
		}
		if city.Valid {
			link.City = &city.String
		}
		if country.Valid {
			link.Country = &country.String
		}

		links = append(links, link)
	}

	return links, rows.Err()
}

// WorksAtHotel reports whether a staff member is attached to a hotel
func (r *StaffRepository) WorksAtHotel(staffID, hotelID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM hotel_staff WHERE staff_id = $1 AND hotel_id = $2)`

	var exists bool
	err := r.db.QueryRow(query, staffID, hotelID).Scan(&exists)
	return exists, err
}

// SetActive toggles a staff account
func (r *StaffRepository) SetActive(id int64, active bool) error {
	query := `UPDATE staff SET is_active = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(query, id, active)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *StaffRepository) scanStaff(row scanner) (*models.Staff, error) {
	staff := &models.Staff{}

	err := row.Scan(
		&staff.ID, &staff.RoleID, &staff.Name, &staff.Email, &staff.PasswordHash,
		&staff.IsActive, &staff.CreatedAt, &staff.UpdatedAt,
		&staff.RoleName, &staff.DiscountPct, &staff.CommissionPct,
	)
	if err != nil {
		return nil, err
	}

	return staff, nil
}
