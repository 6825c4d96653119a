package model

// Роль пользователя. В расписание попадают только преподаватели.
type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleInstructor UserRole = "instructor"
	UserRoleStudent    UserRole = "student"
)
