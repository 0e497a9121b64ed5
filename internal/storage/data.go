package storage

import (
	"github.com/jackc/pgtype"
)

// Organization is a registry record as looked up and cached by the service.
type Organization struct {
	Number     string `json:"number"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	PostalCode string `json:"postnummer"`
}

// Data is a row of the brreg_number table.
type Data struct {
	ID         pgtype.Int8 `db:"id"`
	Number     pgtype.Text `db:"number"`
	Name       pgtype.Text `db:"name"`
	Address    pgtype.Text `db:"address"`
	Postnummer pgtype.Text `db:"postnummer"`
}

func (d *Data) Organization() Organization {
	return Organization{
		Number:     d.Number.String,
		Name:       d.Name.String,
		Address:    d.Address.String,
		PostalCode: d.Postnummer.String,
	}
}
