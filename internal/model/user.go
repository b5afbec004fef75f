package model

import "time"

// User represents a row in the `users` table.  Accounts are keyed by an
// opaque UUID; the (cpf, userType) pair is unique per role so the same
// person may hold both a teacher and a student account.  Email is a
// synthesized placeholder (see the registration handler) that exists only
// to satisfy the unique-email column.
//
// Fields:
//  ID           - users.id (UUID string)
//  Email        - users.email (synthetic, unique)
//  PasswordHash - users.password (bcrypt)
//  UserType     - users.userType ("professor" | "aluno")
//  FullName     - users.nomeCompleto
//  CPF          - users.cpf (11 digit national id)
//  BirthDate    - users.dataNascimento ("YYYY-MM-DD" as stored)
//  CurrentToken - users.currentToken (advisory last-issued JWT; never used for invalidation)
//  LastLogin    - users.lastLogin (nullable)
//  CreatedAt    - users.createdAt
//  UpdatedAt    - users.updatedAt
type User struct {
	ID           string
	Email        string
	PasswordHash string
	UserType     Role
	FullName     string
	CPF          string
	BirthDate    string
	CurrentToken string
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
