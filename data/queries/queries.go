package queries

import (
	"embed"
	"fmt"
)

//go:embed create/*.sql delete/*.sql insert/*.sql select/*.sql update/*.sql
var Files embed.FS

// ^^^ the go:embed directive is used to embed the files in the queries package
// meaning on compile time it will convert the files to binary data and embed it in the queries package

type CreateQueries struct {
	Prices              string
	PriceSymbolMetadata string
}

type DeleteQueries struct {
	MetadataBySymbol string
	PricesBySymbol   string
}

type InsertQueries struct {
	Metadata string
	Price    string
}

type SelectQueries struct {
	MetaDataBySymbol string
	PricesBySymbols  string
}

type UpdateQueries struct {
	LastRefreshedDate string
}

type QueryHelperStruct struct {
	Create CreateQueries
	Delete DeleteQueries
	Insert InsertQueries
	Select SelectQueries
	Update UpdateQueries
}

var QueryHelper = QueryHelperStruct{
	Create: CreateQueries{
		Prices:              "create/prices.sql",
		PriceSymbolMetadata: "create/price_symbol_metadata.sql",
	},
	Delete: DeleteQueries{
		MetadataBySymbol: "delete/metadata_by_symbol.sql",
		PricesBySymbol:   "delete/prices_by_symbol.sql",
	},
	Insert: InsertQueries{
		Metadata: "insert/metadata.sql",
		Price:    "insert/price.sql",
	},
	Select: SelectQueries{
		MetaDataBySymbol: "select/meta_data_by_symbol.sql",
		PricesBySymbols:  "select/prices_by_symbols.sql",
	},
	Update: UpdateQueries{
		LastRefreshedDate: "update/last_refreshed_date.sql",
	},
}

// SchemaOrder is the order the create scripts run in on startup
var SchemaOrder = []string{
	QueryHelper.Create.Prices,
	QueryHelper.Create.PriceSymbolMetadata,
}

func Get(path string) string {
	content, err := Files.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("error reading query file: %w", err))
	}

	return string(content)
}
