package sample

import "time"

//go:tsdgen:export
type User struct {
	ID        int64
	Name      string
	Email     *string
	CreatedAt time.Time
	Tags      []string
	Ratings   map[string]float64
	ByCode    map[int]string
	Internal  string `json:"-"`
	Nickname  string `json:"nick_name"`
	RoleID    int64
	Role      *Role `gorm:"foreignKey:RoleID"`

	hidden string
}

type Role struct {
	ID   int64
	Name string
}

//go:tsdgen:export,name=AccountStatus
type Status int

const (
	StatusActive   Status = 1
	StatusInactive Status = 2
	StatusBanned   Status = 10
)

var _ = hiddenUse

func hiddenUse(u User) string { return u.hidden }
