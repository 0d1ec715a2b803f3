package postgres

import "time"

type matchBatchTableModel struct {
	ID         string    `db:"id"`
	Partition  string    `db:"partition"`
	League     string    `db:"league"`
	Season     string    `db:"season"`
	Tournament string    `db:"tournament"`
	Week       string    `db:"week"`
	Matches    string    `db:"matches"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type matchRecordDocument struct {
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
}
