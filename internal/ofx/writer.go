// Package ofx renders canonical transactions as an OFX 2.1.1 bank statement
// document with a fixed header and no sign-on block.
package ofx

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/extracto-ofx/internal/dateutils"
	"fjacquet/extracto-ofx/internal/models"

	"github.com/aclindsa/ofxgo"
)

const (
	header = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<?OFX OFXHEADER="200" VERSION="211" SECURITY="NONE" OLDFILEUID="NONE" NEWFILEUID="NONE"?>
<OFX>
  <BANKMSGSRSV1><STMTTRNRS><STMTRS>
    <CURDEF>%s</CURDEF>
    <BANKTRANLIST>
`
	footer = `    </BANKTRANLIST>
  </STMTRS></STMTTRNRS></BANKMSGSRSV1>
</OFX>
`
)

var markup = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Options control the document.
type Options struct {
	// Currency is the ISO 4217 code written to CURDEF.
	Currency string
	// EscapeMarkup escapes &, < and > in MEMO and FITID.
	EscapeMarkup bool
}

// DefaultOptions returns EUR with markup escaping on.
func DefaultOptions() Options {
	return Options{Currency: models.DefaultCurrency, EscapeMarkup: true}
}

// Writer renders statements. It holds no per-run state.
type Writer struct {
	currency string
	escape   bool
}

// NewWriter validates opts and returns a Writer.
func NewWriter(opts Options) (*Writer, error) {
	if opts.Currency == "" {
		opts.Currency = models.DefaultCurrency
	}
	cur, err := ofxgo.NewCurrSymbol(strings.ToUpper(opts.Currency))
	if err != nil {
		return nil, fmt.Errorf("invalid statement currency %q: %w", opts.Currency, err)
	}
	return &Writer{currency: cur.String(), escape: opts.EscapeMarkup}, nil
}

// Write returns the document for txs, in input order. The same input always
// gives the same bytes.
func (w *Writer) Write(txs []models.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, header, w.currency)
	for _, tx := range txs {
		w.writeTransaction(&b, tx)
	}
	b.WriteString(footer)
	return b.String()
}

// Encode writes the document for txs to out.
func (w *Writer) Encode(out io.Writer, txs []models.Transaction) error {
	_, err := io.WriteString(out, w.Write(txs))
	return err
}

func (w *Writer) writeTransaction(b *strings.Builder, tx models.Transaction) {
	b.WriteString("      <STMTTRN>\n")
	fmt.Fprintf(b, "        <TRNTYPE>%s</TRNTYPE>\n", trnType(tx))
	fmt.Fprintf(b, "        <DTPOSTED>%s</DTPOSTED>\n", dateutils.ToOFXDate(tx.Date))
	fmt.Fprintf(b, "        <TRNAMT>%s</TRNAMT>\n", tx.Amount.Fixed())
	fmt.Fprintf(b, "        <FITID>%s</FITID>\n", w.text(tx.ID))
	fmt.Fprintf(b, "        <MEMO>%s</MEMO>\n", w.text(tx.Memo))
	b.WriteString("      </STMTTRN>\n")
}

func (w *Writer) text(s string) string {
	if w.escape {
		return markup.Replace(s)
	}
	return s
}

func trnType(tx models.Transaction) string {
	if tx.IsCredit() {
		return ofxgo.TrnTypeCredit.String()
	}
	return ofxgo.TrnTypeDebit.String()
}
