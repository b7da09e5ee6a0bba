package transport

// Request DTOs. The validate tags are the declarative per-route rules; the
// handlers run them through pkg/validate before touching any use case.

type SignupRequest struct {
	FullName string `json:"fullName" validate:"omitempty,max=100"`
	Username string `json:"username" validate:"required,lowercase,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest takes a single identifier resolving to username or email.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type UpdateUserRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required,min=6"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type TaskCreateRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=120"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Priority    string `json:"priority" validate:"required,oneof=low medium high"`
	DueDate     string `json:"dueDate" validate:"omitempty"`
}

type TaskUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=120"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"dueDate" validate:"omitempty"`
}
