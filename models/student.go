package models

// Student is one evaluation participant. Email is the natural key used by
// roster imports; Team groups students for pairing.
type Student struct {
	StudentID uint   `gorm:"primaryKey;column:student_id" json:"student_id"`
	FirstName string `gorm:"column:first_name;size:120" json:"first_name"`
	LastName  string `gorm:"column:last_name;size:120" json:"last_name"`
	Email     string `gorm:"column:email;uniqueIndex;size:255" json:"email"`
	Team      string `gorm:"column:team;size:120" json:"team"`
}

func (Student) TableName() string {
	return "students"
}

// FullName returns the display name used in emails and reports.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
