package dto

type UserResponse struct {
	UserID    string `json:"user_id"`
	Name      string `json:"nombre"`
	Email     string `json:"email"`
	Phone     string `json:"telefono"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type ToggleRoleResponse struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
