package lookup

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"

	"leadclean/internal/util"
)

// SQLiteQuery is the statement used against .db / .sqlite sources.
const SQLiteQuery = `SELECT variant, canonical FROM company_aliases`

// ReadPairs loads a two-column variant table. The format follows the file
// extension: .csv / .tsv, .xlsx, .db / .sqlite.
func ReadPairs(path string) ([]Pair, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, eris.Wrapf(err, "lookup: stat %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return readDelimited(path, ',')
	case ".tsv":
		return readDelimited(path, '\t')
	case ".xlsx":
		return readXLSX(path)
	case ".db", ".sqlite", ".sqlite3":
		return readSQLite(path)
	default:
		return nil, eris.Errorf("lookup: unsupported table format: %s", path)
	}
}

func readDelimited(path string, sep rune) ([]Pair, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "lookup: read %s", path)
	}
	blob = bytes.TrimPrefix(blob, []byte("\xEF\xBB\xBF"))

	r := csv.NewReader(bytes.NewReader(blob))
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows := [][]string{}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "lookup: parse %s", path)
		}
		rows = append(rows, row)
	}
	return rowsToPairs(rows)
}

func readXLSX(path string) ([]Pair, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "lookup: open %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, eris.Errorf("lookup: no sheets in %s", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, eris.Wrapf(err, "lookup: rows of %s", path)
	}
	return rowsToPairs(rows)
}

func readSQLite(path string) ([]Pair, error) {
	conn, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, eris.Wrapf(err, "lookup: open %s", path)
	}
	defer conn.Close()

	rows, err := conn.Query(SQLiteQuery)
	if err != nil {
		return nil, eris.Wrapf(err, "lookup: query %s", path)
	}
	defer rows.Close()

	out := []Pair{}
	for rows.Next() {
		var variant, canonical sql.NullString
		if err := rows.Scan(&variant, &canonical); err != nil {
			return nil, eris.Wrapf(err, "lookup: scan %s", path)
		}
		out = append(out, Pair{Variant: variant.String, Canonical: canonical.String})
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "lookup: rows of %s", path)
	}
	return out, nil
}

// rowsToPairs takes the first two columns of every row, skipping an optional
// header row. A table whose rows never have two columns is malformed.
func rowsToPairs(rows [][]string) ([]Pair, error) {
	out := make([]Pair, 0, len(rows))
	twoColumns := false
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		twoColumns = true
		if i == 0 && isHeaderRow(row) {
			continue
		}
		out = append(out, Pair{Variant: row[0], Canonical: row[1]})
	}
	if len(rows) > 0 && !twoColumns {
		return nil, eris.New("lookup: table needs two columns (variant, canonical)")
	}
	return out, nil
}

func isHeaderRow(row []string) bool {
	first := util.FoldKey(row[0])
	second := util.FoldKey(row[1])
	return first == "variant" || first == "alias" || second == "canonical"
}
