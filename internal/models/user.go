package models

import "time"

type User struct {
	BaseModel
	Email    string   `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name     string   `gorm:"type:varchar(100);not null"`
	Password string   `gorm:"not null" json:"-"`
	Role     UserRole `gorm:"type:varchar(20);not null;default:'USER'"`
	Image    *string

	EmailVerified            *time.Time
	EmailVerificationToken   *string    `gorm:"type:varchar(64);index" json:"-"`
	EmailVerificationExpires *time.Time `json:"-"`

	PasswordResetToken   *string    `gorm:"type:varchar(64);index" json:"-"`
	PasswordResetExpires *time.Time `json:"-"`

	RefreshToken *string `gorm:"type:text" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsVerified() bool {
	return u.EmailVerified != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// PublicUser - то, что уходит клиенту: без пароля и токенов
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
