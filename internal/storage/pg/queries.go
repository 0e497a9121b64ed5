package pg

const (
	table = "brreg_number"

	columns = `
	"id",
	"number",
	"name",
	"address",
	"postnummer"`

	retrieveQuery = `select` + columns + ` from ` + table + ` where number=$1`

	// serializes writers of the same number for the rest of the transaction
	lockQuery = `select pg_advisory_xact_lock(hashtext($1))`

	selectIDQuery = `select "id" from ` + table + ` where number=$1`

	insertQuery = `insert into ` + table + ` ("number", "name", "address", "postnummer") values ($1, $2, $3, $4)`

	updateQuery = `update ` + table + ` set "number"=$2, "name"=$3, "address"=$4, "postnummer"=$5 where id=$1`
)
