package store

import "gitlab.com/boxker/boxk"

// Storer lifecycle shared by stores
type Storer interface {
	Init() error
	Close() error
}

var (
	_ Storer             = (*HistoryStore)(nil)
	_ boxk.HistoryStorer = (*HistoryStore)(nil)
)
