package models

// Shared returns the tables every deployment migrates, independent of tier plugins.
func Shared() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&RefreshToken{},
		&CategoryProgress{},
		&PracticeSession{},
		&UserNotification{},
		&AdminNotification{},
		&SystemLog{},
	}
}
