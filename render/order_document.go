// Package render builds printable HTML documents.
package render

import (
	"fmt"
	"html"
	"math"
	"strings"

	"apotek/model"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Rupiah formats an amount the Indonesian way, e.g. "Rp 13.320".
// Amounts are rounded to whole rupiah.
func Rupiah(amount float64) string {
	p := message.NewPrinter(language.Indonesian)
	n := int64(math.Floor(amount + 0.5))
	if n < 0 {
		return p.Sprintf("-Rp %d", -n)
	}
	return p.Sprintf("Rp %d", n)
}

const documentStyle = `
  body { font-family: Arial, sans-serif; font-size: 12px; margin: 24px; }
  h1 { text-align: center; font-size: 18px; margin-bottom: 4px; }
  .meta td { padding: 2px 8px 2px 0; }
  table.items { width: 100%; border-collapse: collapse; margin-top: 16px; }
  table.items th, table.items td { border: 1px solid #333; padding: 4px 6px; }
  .right { text-align: right; }
  .center { text-align: center; }
  .sign { margin-top: 48px; width: 240px; margin-left: auto; text-align: center; }
`

// OrderDocumentHTML renders the Surat Pesanan for a submitted purchase
// order. sup may be nil when the order names a free-text supplier.
func OrderDocumentHTML(po model.PurchaseOrder, sup *model.Supplier) string {
	var sb strings.Builder
	esc := html.EscapeString

	sb.WriteString(`<!DOCTYPE html><html lang="id"><head><meta charset="utf-8">`)
	sb.WriteString(fmt.Sprintf(`<title>Surat Pesanan %s</title>`, esc(po.ID)))
	sb.WriteString(`<style>` + documentStyle + `</style></head><body>`)
	sb.WriteString(`<h1>SURAT PESANAN</h1>`)

	sb.WriteString(`<table class="meta">`)
	sb.WriteString(fmt.Sprintf(`<tr><td>Nomor</td><td>: %s</td></tr>`, esc(po.ID)))
	sb.WriteString(fmt.Sprintf(`<tr><td>Tanggal</td><td>: %s</td></tr>`, po.Date.Format("02/01/2006")))
	sb.WriteString(fmt.Sprintf(`<tr><td>Kepada</td><td>: %s</td></tr>`, esc(po.SupplierName)))
	if sup != nil {
		if sup.Address != "" {
			sb.WriteString(fmt.Sprintf(`<tr><td>Alamat</td><td>: %s</td></tr>`, esc(sup.Address)))
		}
		if sup.Phone != "" {
			sb.WriteString(fmt.Sprintf(`<tr><td>Telepon</td><td>: %s</td></tr>`, esc(sup.Phone)))
		}
	}
	sb.WriteString(`</table>`)

	sb.WriteString(`<table class="items"><thead><tr>`)
	sb.WriteString(`<th class="center">No</th><th>Nama Obat</th><th class="right">Jumlah</th>`)
	sb.WriteString(`<th class="center">Satuan</th><th class="right">Harga Satuan</th><th class="right">Subtotal</th>`)
	sb.WriteString(`</tr></thead><tbody>`)
	if len(po.Items) == 0 {
		sb.WriteString(`<tr><td colspan="6" class="center">Tidak ada item.</td></tr>`)
	}
	for i, it := range po.Items {
		sb.WriteString(`<tr>`)
		sb.WriteString(fmt.Sprintf(`<td class="center">%d</td>`, i+1))
		sb.WriteString(fmt.Sprintf(`<td>%s</td>`, esc(it.Name)))
		sb.WriteString(fmt.Sprintf(`<td class="right">%d</td>`, it.Quantity))
		sb.WriteString(fmt.Sprintf(`<td class="center">%s</td>`, esc(it.Unit)))
		sb.WriteString(fmt.Sprintf(`<td class="right">%s</td>`, Rupiah(it.UnitCost)))
		sb.WriteString(fmt.Sprintf(`<td class="right">%s</td>`, Rupiah(float64(it.Quantity)*it.UnitCost)))
		sb.WriteString(`</tr>`)
	}
	sb.WriteString(`</tbody><tfoot><tr>`)
	sb.WriteString(fmt.Sprintf(`<td colspan="5" class="right"><strong>Total</strong></td><td class="right"><strong>%s</strong></td>`,
		Rupiah(po.TotalAmount)))
	sb.WriteString(`</tr></tfoot></table>`)

	sb.WriteString(`<div class="sign"><p>Apoteker Penanggung Jawab</p><br><br><br><p>(________________________)</p></div>`)
	sb.WriteString(`</body></html>`)
	return sb.String()
}
