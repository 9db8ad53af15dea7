package tibber

import (
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/alejandrodnm/wattcast/internal/domain"
)

// cursorLayout es el formato que Tibber espera, en base64, en el argumento "after".
const cursorLayout = "2006-01-02T15:04:05"

// encodeAfterCursor codifica start (en UTC, sin zona) como cursor de paginación.
func encodeAfterCursor(start time.Time) string {
	return base64.StdEncoding.EncodeToString([]byte(start.UTC().Format(cursorLayout)))
}

// mapNodes convierte nodos raw a lecturas. Los nodos sin "from" válido se descartan:
// from_time es parte de la clave primaria.
func mapNodes(homeID string, nodes []consumptionNode) []domain.Reading {
	out := make([]domain.Reading, 0, len(nodes))
	for _, n := range nodes {
		from, err := time.Parse(time.RFC3339, n.From)
		if err != nil {
			slog.Warn("skipping consumption node with invalid from", "from", n.From, "err", err)
			continue
		}
		to, _ := time.Parse(time.RFC3339, n.To)
		out = append(out, domain.Reading{
			HomeID:      homeID,
			From:        from,
			To:          to,
			Consumption: n.Consumption,
			Cost:        n.Cost,
			UnitPrice:   n.UnitPrice,
			Currency:    n.Currency,
		})
	}
	return out
}
