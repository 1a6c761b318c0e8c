package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
)

// expectedHeader is the fixed CSV column order accepted by bulk import.
var expectedHeader = []string{
	"store_id", "name", "store_type", "status",
	"latitude", "longitude",
	"address_street", "address_city", "address_state", "address_postal_code", "address_country",
	"phone", "services",
	"hours_mon", "hours_tue", "hours_wed", "hours_thu", "hours_fri", "hours_sat", "hours_sun",
}

// rawRow is one CSV data row before validation. ParseErr carries a
// row-local structural problem (wrong field count) so the row can fail
// without aborting the batch.
type rawRow struct {
	StoreID       string
	Name          string
	StoreType     string
	Status        string
	Latitude      string
	Longitude     string
	AddressStreet string
	AddressCity   string
	AddressState  string
	AddressPostal string
	AddressCtry   string
	Phone         string
	Services      string
	Hours         [7]string
	ParseErr      error
}

// parseCSV reads the upload, enforces the fixed header, and returns the
// data rows in input order.
func parseCSV(r io.Reader, maxRows int) ([]rawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(expectedHeader)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty csv file")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read csv header")
	}
	for i, name := range expectedHeader {
		if strings.TrimSpace(strings.ToLower(header[i])) != name {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("unexpected csv header: column %d must be %q", i+1, name))
		}
	}

	var rows []rawRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A wrong field count is confined to its row; anything
			// else means the file itself is unreadable.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
				rows = append(rows, rawRow{ParseErr: fmt.Errorf("wrong number of columns")})
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read csv row")
		}
		rows = append(rows, rowFromRecord(record))
		if maxRows > 0 && len(rows) > maxRows {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("import exceeds the %d row limit", maxRows))
		}
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv file has no data rows")
	}
	return rows, nil
}

func rowFromRecord(record []string) rawRow {
	row := rawRow{
		StoreID:       strings.TrimSpace(record[0]),
		Name:          strings.TrimSpace(record[1]),
		StoreType:     strings.TrimSpace(record[2]),
		Status:        strings.TrimSpace(record[3]),
		Latitude:      strings.TrimSpace(record[4]),
		Longitude:     strings.TrimSpace(record[5]),
		AddressStreet: strings.TrimSpace(record[6]),
		AddressCity:   strings.TrimSpace(record[7]),
		AddressState:  strings.TrimSpace(record[8]),
		AddressPostal: strings.TrimSpace(record[9]),
		AddressCtry:   strings.TrimSpace(record[10]),
		Phone:         strings.TrimSpace(record[11]),
		Services:      strings.TrimSpace(record[12]),
	}
	for i := 0; i < 7; i++ {
		row.Hours[i] = strings.TrimSpace(record[13+i])
	}
	return row
}

// splitServices parses the comma-joined services cell.
func splitServices(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	services := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			services = append(services, part)
		}
	}
	return services
}
