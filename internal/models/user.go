package models

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User — учётная запись, которой владеет внешний сервис идентификации.
// Сервис записи читает её на каждом запросе и даёт администраторам менять роль и блокировку.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	IsBlocked bool   `json:"isBlocked"`
}

// IsAdmin сообщает, есть ли у пользователя права администратора.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserPatch — изменение учётной записи администратором. Nil-поля не меняются.
type UserPatch struct {
	Role      *string `json:"role" validate:"omitempty,oneof=user admin"`
	IsBlocked *bool   `json:"isBlocked"`
}
