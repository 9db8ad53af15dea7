package domain

import (
	"sort"
	"time"
)

// TimePoint es una lectura horaria ya limpia: instante + valor numérico.
type TimePoint struct {
	Time  time.Time
	Value float64
}

// Series es una secuencia de TimePoint ordenada ascendentemente por instante.
// Puede tener huecos; cada instante aparece como mucho una vez.
type Series []TimePoint

// Times devuelve los instantes de la serie en orden.
func (s Series) Times() []time.Time {
	out := make([]time.Time, len(s))
	for i, p := range s {
		out[i] = p.Time
	}
	return out
}

// Values devuelve los valores de la serie en orden.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Between devuelve los puntos con from <= t < to (intervalo semiabierto).
// No copia: el resultado comparte memoria con s.
func (s Series) Between(from, to time.Time) Series {
	lo := sort.Search(len(s), func(i int) bool { return !s[i].Time.Before(from) })
	hi := sort.Search(len(s), func(i int) bool { return !s[i].Time.Before(to) })
	if hi < lo {
		hi = lo
	}
	return s[lo:hi]
}

// Bounds devuelve el primer y último instante. ok=false si la serie está vacía.
func (s Series) Bounds() (first, last time.Time, ok bool) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s[0].Time, s[len(s)-1].Time, true
}

// MonthPoint es el total de un mes natural. Month es el día 1 a las 00:00.
type MonthPoint struct {
	Month time.Time
	Value float64
}

// MonthStart normaliza t al primer día de su mes en la zona de t.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// AddMonths suma n meses (n puede ser negativo) a un inicio de mes.
// time.Date normaliza el desbordamiento: noviembre + 3 = febrero del año siguiente.
func AddMonths(month time.Time, n int) time.Time {
	return time.Date(month.Year(), month.Month()+time.Month(n), 1, 0, 0, 0, 0, month.Location())
}
