// Package model defines the data structures used throughout the application.
package model

// Account is one registered user's stored field set.
//
// WHY ALL STRINGS?
// The registration form submits every field as text and nothing downstream
// interprets them: dob is never parsed as a date, weight and height are never
// parsed as numbers. Keeping them as strings means the listing endpoint returns
// exactly what was submitted.
//
// JSON TAGS MATCH THE COLUMN NAMES:
// GET /registrations returns raw stored rows, and existing clients read them
// by column name ("Date_of_birth", not "dob"). The tags keep that shape no
// matter which SQL driver is underneath.
//
// NO ID FIELD:
// Registration_Table has no declared primary key and email is not unique, so
// two registrations with the same email are two distinct, equal-looking rows.
type Account struct {
	Name        string `json:"Name"`
	Gender      string `json:"Gender"`
	Email       string `json:"Email"`
	DateOfBirth string `json:"Date_of_birth"`
	Password    string `json:"Password"` // verbatim in plain mode, bcrypt hash in bcrypt mode
	Weight      string `json:"Weight"`
	Height      string `json:"Height"`
}

// Credentials is a validated login submission.
type Credentials struct {
	Email    string
	Password string
}
