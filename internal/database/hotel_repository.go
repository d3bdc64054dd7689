package database

import (
	"database/sql"
	"fmt"

	"github.com/insiderbookings/backoffice/internal/models"
)

// HotelRepository handles database operations for hotels and rooms tables
type HotelRepository struct {
	db DB
}

// NewHotelRepository creates a new HotelRepository
func NewHotelRepository(db DB) *HotelRepository {
	return &HotelRepository{db: db}
}

const hotelColumns = `id, name, location, description, image, phone, email,
	   star_rating, rating, price, category, amenities, lat, lng,
	   address, city, country, created_at, updated_at`

// Create inserts a new hotel
func (r *HotelRepository) Create(hotel *models.Hotel) error {
	query := `
		INSERT INTO hotels (
			name, location, description, image, phone, email,
			star_rating, rating, price, category, amenities, lat, lng,
			address, city, country
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		hotel.Name, hotel.Location, hotel.Description, hotel.Image, hotel.Phone,
		hotel.Email, hotel.StarRating, hotel.Rating, hotel.Price, hotel.Category,
		hotel.Amenities, hotel.Lat, hotel.Lng, hotel.Address, hotel.City, hotel.Country,
	).Scan(&hotel.ID, &hotel.CreatedAt, &hotel.UpdatedAt)
}

// GetByID retrieves a hotel by ID
func (r *HotelRepository) GetByID(id int64) (*models.Hotel, error) {
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE id = $1`

	return r.scanHotel(r.db.QueryRow(query, id))
}

// List retrieves hotels matching the filter
func (r *HotelRepository) List(filter models.HotelFilter) ([]models.Hotel, error) {
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE 1=1`
	args := []interface{}{}

	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		query += fmt.Sprintf(" AND (location ILIKE $%d OR city ILIKE $%d OR country ILIKE $%d)", len(args), len(args), len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.MinRating > 0 {
		args = append(args, filter.MinRating)
		query += fmt.Sprintf(" AND rating >= $%d", len(args))
	}

	query += " ORDER BY rating DESC, name"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hotels := []models.Hotel{}
	for rows.Next() {
		hotel, err := r.scanHotel(rows)
		if err != nil {
			return nil, err
		}
		hotels = append(hotels, *hotel)
	}

	return hotels, rows.Err()
}

// Update replaces hotel fields
func (r *HotelRepository) Update(hotel *models.Hotel) error {
	query := `
		UPDATE hotels
		SET name = $2, location = $3, description = $4, image = $5, phone = $6,
			email = $7, star_rating = $8, rating = $9, price = $10, category = $11,
			amenities = $12, lat = $13, lng = $14, address = $15, city = $16,
			country = $17, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	return r.db.QueryRow(
		query,
		hotel.ID, hotel.Name, hotel.Location, hotel.Description, hotel.Image,
		hotel.Phone, hotel.Email, hotel.StarRating, hotel.Rating, hotel.Price,
		hotel.Category, hotel.Amenities, hotel.Lat, hotel.Lng, hotel.Address,
		hotel.City, hotel.Country,
	).Scan(&hotel.UpdatedAt)
}

// Delete removes a hotel
func (r *HotelRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM hotels WHERE id = $1`, id)
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

const roomColumns = `id, hotel_id, room_number, name, description, image,
	   price, capacity, beds, available, suite, created_at, updated_at, deleted_at`

// CreateRoom inserts a new room
func (r *HotelRepository) CreateRoom(room *models.Room) error {
	query := `
		INSERT INTO rooms (
			hotel_id, room_number, name, description, image,
			price, capacity, beds, available, suite
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		room.HotelID, room.RoomNumber, room.Name, room.Description, room.Image,
		room.Price, room.Capacity, room.Beds, room.Available, room.Suite,
	).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
}

// GetRoom retrieves a room by ID, excluding soft-deleted rows
func (r *HotelRepository) GetRoom(id int64) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1 AND deleted_at IS NULL`

	return r.scanRoom(r.db.QueryRow(query, id))
}

// GetRoomByNumber retrieves a room by hotel and room number
func (r *HotelRepository) GetRoomByNumber(hotelID int64, roomNumber int) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms
		WHERE hotel_id = $1 AND room_number = $2 AND deleted_at IS NULL`

	return r.scanRoom(r.db.QueryRow(query, hotelID, roomNumber))
}

// ListRooms retrieves a hotel's rooms ordered by room number
func (r *HotelRepository) ListRooms(hotelID int64) ([]models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms
		WHERE hotel_id = $1 AND deleted_at IS NULL
		ORDER BY room_number`

	rows, err := r.db.Query(query, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := []models.Room{}
	for rows.Next() {
		room, err := r.scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *room)
	}

	return rooms, rows.Err()
}

// UpdateRoom replaces room fields
func (r *HotelRepository) UpdateRoom(room *models.Room) error {
	query := `
		UPDATE rooms
		SET room_number = $2, name = $3, description = $4, image = $5,
			price = $6, capacity = $7, beds = $8, available = $9, suite = $10,
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`

	return r.db.QueryRow(
		query,
		room.ID, room.RoomNumber, room.Name, room.Description, room.Image,
		room.Price, room.Capacity, room.Beds, room.Available, room.Suite,
	).Scan(&room.UpdatedAt)
}

// SoftDeleteRoom marks a room as deleted
func (r *HotelRepository) SoftDeleteRoom(id int64) error {
	query := `UPDATE rooms SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(query, id)
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

func (r *HotelRepository) scanHotel(row scanner) (*models.Hotel, error) {
	hotel := &models.Hotel{}
	var location, description, image, phone, email sql.NullString
	var category, address, city, country sql.NullString
	var starRating sql.NullInt64
	var price, lat, lng sql.NullFloat64
	var amenities []byte

	err := row.Scan(
		&hotel.ID, &hotel.Name, &location, &description, &image, &phone, &email,
		&starRating, &hotel.Rating, &price, &category, &amenities, &lat, &lng,
		&address, &city, &country, &hotel.CreatedAt, &hotel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if location.Valid {
		hotel.Location = &location.String
	}
	if description.Valid {
		hotel.Description = &description.String
	}
	if image.Valid {
		hotel.Image = &image.String
	}
	if phone.Valid {
		hotel.Phone = &phone.String
	}
	if email.Valid {
		hotel.Email = &email.String
	}
	if starRating.Valid {
		v := int(starRating.Int64)
		hotel.StarRating = &v
	}
	if price.Valid {
		hotel.Price = &price.Float64
	}
	if category.Valid {
		hotel.Category = &category.String
	}
	if len(amenities) > 0 {
		hotel.Amenities = amenities
	}
	if lat.Valid {
		hotel.Lat = &lat.Float64
	}
	if lng.Valid {
		hotel.Lng = &lng.Float64
	}
	if address.Valid {
		hotel.Address = &address.String
	}
	if city.Valid {
		hotel.City = &city.String
	}
	if country.Valid {
		hotel.Country = &country.String
	}

	return hotel, nil
}

func (r *HotelRepository) scanRoom(row scanner) (*models.Room, error) {
	room := &models.Room{}
	var name, description, image, beds sql.NullString
	var deletedAt sql.NullTime

	err := row.Scan(
		&room.ID, &room.HotelID, &room.RoomNumber, &name, &description, &image,
		&room.Price, &room.Capacity, &beds, &room.Available, &room.Suite,
		&room.CreatedAt, &room.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if name.Valid {
		room.Name = &name.String
	}
	if description.Valid {
		room.Description = &description.String
	}
	if image.Valid {
		room.Image = &image.String
	}
	if beds.Valid {
		room.Beds = &beds.String
	}
	if deletedAt.Valid {
		room.DeletedAt = &deletedAt.Time
	}

	return room, nil
}
