package tibber

// DTOs raw de la API GraphQL de Tibber. Solo se usan dentro de este paquete.
// La conversión a domain.Reading se hace en mapping.go.

// envelope es cualquier respuesta que pueda traer el array "errors".
type envelope interface {
	errorMessages() []string
}

type graphQLErrorItem struct {
	Message string `json:"message"`
}

// consumptionResponse es la respuesta de las consultas Consumption y ConsumptionRange.
type consumptionResponse struct {
	Data struct {
		Viewer struct {
			Home struct {
				Consumption struct {
					Nodes []consumptionNode `json:"nodes"`
				} `json:"consumption"`
			} `json:"home"`
		} `json:"viewer"`
	} `json:"data"`
	Errors []graphQLErrorItem `json:"errors"`
}

func (r *consumptionResponse) errorMessages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if e.Message == "" {
			msgs = append(msgs, "Unknown error")
			continue
		}
		msgs = append(msgs, e.Message)
	}
	return msgs
}

// consumptionNode es una hora de consumo. Los campos numéricos pueden ser null
// para horas aún no liquidadas.
type consumptionNode struct {
	From        string   `json:"from"`
	To          string   `json:"to"`
	Consumption *float64 `json:"consumption"`
	Cost        *float64 `json:"cost"`
	UnitPrice   *float64 `json:"unitPrice"`
	Currency    string   `json:"currency"`
}
