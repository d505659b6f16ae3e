// Package export renders contact submissions as a spreadsheet-friendly CSV.
//
// The format is fixed: a UTF-8 byte-order mark, an unquoted header row, then
// one row per contact with every field double-quoted and inner quotes
// doubled. Rows are separated by "\n" with no trailing newline.
package export

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/devfolio/portfolio/backend/internal/contact"
)

// BOM is written first so spreadsheet software detects UTF-8.
const BOM = "\ufeff"

// Header is the first CSV row.
const Header = "Nome,Email,Empresa,Mensagem,Status,Data de Criação"

// DateLayout matches the pt-BR locale rendering used by the admin panel.
const DateLayout = "02/01/2006, 15:04:05"

// Filename returns the download name for an export taken at t.
func Filename(t time.Time) string {
	return "contatos-" + t.UTC().Format("2006-01-02") + ".csv"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteCSV writes contacts in the given order. Dates are rendered in loc;
// a nil loc means UTC.
func WriteCSV(w io.Writer, contacts []*contact.Contact, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	bw := bufio.NewWriter(w)
	bw.WriteString(BOM)
	bw.WriteString(Header)
	bw.WriteByte('\n')
	for i, c := range contacts {
		if i > 0 {
			bw.WriteByte('\n')
		}
		bw.WriteString(strings.Join([]string{
			quote(c.Name),
			quote(c.Email),
			quote(c.Company),
			quote(c.Message),
			quote(string(c.Status)),
			quote(c.CreatedAt.In(loc).Format(DateLayout)),
		}, ","))
	}
	return bw.Flush()
}
