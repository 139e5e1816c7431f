package domain

const (
	RoleFarmer = "FARMER"
	RoleBuyer  = "BUYER"
	RoleAdmin  = "ADMIN"
)

type User struct {
	ID    string `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
	Name  string `db:"name" json:"name"`
	Hash  string `db:"password_hash" json:"-"`
	Role  string `db:"role" json:"role"`
}
