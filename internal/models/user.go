package models

// Identity is the respondent or author behind a request. Users are owned by the
// identity provider; this service only keeps their ids.
type Identity struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	GuestName string `json:"guest_name,omitempty"`
}

func (i Identity) IsGuest() bool {
	return i.UserID == ""
}

// AllModels lists the tables managed by the service, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&Test{},
		&Question{},
		&Option{},
		&TestSession{},
		&Answer{},
		&TestResult{},
	}
}
