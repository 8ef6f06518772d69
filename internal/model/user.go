package model

import "time"

type User struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Age       int       `db:"age"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	DOB       time.Time `db:"dob"`
	CreatedAt time.Time `db:"created_at"`
}
