package handler

// ── Auth ─────────────────────────────────────────────────────────────────────

type registerRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"firstName" validate:"required,min=1,max=50"`
	LastName  string `json:"lastName" validate:"required,min=1,max=50"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,min=10,max=20"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type resetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128,nefield=CurrentPassword"`
}

// ── Yachts ───────────────────────────────────────────────────────────────────

type createYachtRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Type        string   `json:"type" validate:"required"`
	Capacity    int      `json:"capacity" validate:"required,min=1,max=50"`
	Length      float64  `json:"length" validate:"required,gt=0"`
	Year        int      `json:"year" validate:"required,min=1900,maxyear"`
	PricePerDay float64  `json:"pricePerDay" validate:"required,gt=0"`
	Currency    string   `json:"currency,omitempty" validate:"omitempty,oneof=USD AED EUR"`
	Features    []string `json:"features"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
	Location    string   `json:"location" validate:"required"`
	IsAvailable *bool    `json:"isAvailable,omitempty"`
}

type updateYachtRequest struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Type        *string   `json:"type,omitempty" validate:"omitempty,min=1"`
	Capacity    *int      `json:"capacity,omitempty" validate:"omitempty,min=1,max=50"`
	Length      *float64  `json:"length,omitempty" validate:"omitempty,gt=0"`
	Year        *int      `json:"year,omitempty" validate:"omitempty,min=1900,maxyear"`
	PricePerDay *float64  `json:"pricePerDay,omitempty" validate:"omitempty,gt=0"`
	Currency    *string   `json:"currency,omitempty" validate:"omitempty,oneof=USD AED EUR"`
	Features    *[]string `json:"features,omitempty"`
	Images      *[]string `json:"images,omitempty" validate:"omitempty,dive,url"`
	Location    *string   `json:"location,omitempty" validate:"omitempty,min=1"`
	IsAvailable *bool     `json:"isAvailable,omitempty"`
}

// ── Customers ────────────────────────────────────────────────────────────────

type emergencyContact struct {
	Name         string `json:"name" validate:"required"`
	Phone        string `json:"phone" validate:"required,min=10"`
	Relationship string `json:"relationship" validate:"required"`
}

type createCustomerRequest struct {
	FirstName        string            `json:"firstName" validate:"required,min=1,max=50"`
	LastName         string            `json:"lastName" validate:"required,min=1,max=50"`
	Email            string            `json:"email" validate:"required,email"`
	Phone            string            `json:"phone" validate:"required,min=10"`
	Nationality      string            `json:"nationality,omitempty"`
	DateOfBirth      string            `json:"dateOfBirth,omitempty" validate:"omitempty,rfc3339"`
	EmergencyContact *emergencyContact `json:"emergencyContact,omitempty" validate:"omitempty"`
}

type updateCustomerRequest struct {
	FirstName        *string           `json:"firstName,omitempty" validate:"omitempty,min=1,max=50"`
	LastName         *string           `json:"lastName,omitempty" validate:"omitempty,min=1,max=50"`
	Email            *string           `json:"email,omitempty" validate:"omitempty,email"`
	Phone            *string           `json:"phone,omitempty" validate:"omitempty,min=10"`
	Nationality      *string           `json:"nationality,omitempty"`
	DateOfBirth      *string           `json:"dateOfBirth,omitempty" validate:"omitempty,rfc3339"`
	EmergencyContact *emergencyContact `json:"emergencyContact,omitempty" validate:"omitempty"`
}

// ── Charters ─────────────────────────────────────────────────────────────────

type createCharterRequest struct {
	YachtID         string `json:"yachtId" validate:"required,uuid"`
	CustomerID      string `json:"customerId" validate:"required,uuid"`
	StartDate       string `json:"startDate" validate:"required,rfc3339"`
	EndDate         string `json:"endDate" validate:"required,rfc3339"`
	PackageType     string `json:"packageType" validate:"required,oneof=HALF_DAY FULL_DAY SUNSET OVERNIGHT WEEKLY"`
	GuestCount      int    `json:"guestCount" validate:"required,min=1,max=50"`
	SpecialRequests string `json:"specialRequests,omitempty" validate:"max=1000"`
}

type updateCharterRequest struct {
	StartDate       *string `json:"startDate,omitempty" validate:"omitempty,rfc3339"`
	EndDate         *string `json:"endDate,omitempty" validate:"omitempty,rfc3339"`
	Status          *string `json:"status,omitempty" validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
	PackageType     *string `json:"packageType,omitempty" validate:"omitempty,oneof=HALF_DAY FULL_DAY SUNSET OVERNIGHT WEEKLY"`
	GuestCount      *int    `json:"guestCount,omitempty" validate:"omitempty,min=1,max=50"`
	SpecialRequests *string `json:"specialRequests,omitempty" validate:"omitempty,max=1000"`
}

// ── Users ────────────────────────────────────────────────────────────────────

type updateUserRequest struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=50"`
	Role      *string `json:"role,omitempty" validate:"omitempty,oneof=CUSTOMER USER MANAGER ADMIN"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

// ── Queries ──────────────────────────────────────────────────────────────────

// listQuery holds the paging parameters shared by every list endpoint.
// Equality filters are read separately per resource.
type listQuery struct {
	Page      int    `query:"page" validate:"omitempty,min=1,max=1000000"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=100"`
	SortBy    string `query:"sortBy" validate:"omitempty,alphanum,max=64"`
	SortOrder string `query:"sortOrder" validate:"omitempty,oneof=asc desc"`
}
