package inventory

import "github.com/shopspring/decimal"

// Escalas persistidas: cantidades y costos unitarios NUMERIC(18,4), costo promedio NUMERIC(24,10).
// Ambos backends deben producir el mismo valor, así que el dominio redondea y valida con estas escalas.
const (
	QtyScale     int32 = 4
	AvgCostScale int32 = 10
)

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Si el denominador no es positivo (stock previo negativo) el nuevo costo es el de la entrada.
// El resultado se redondea a AvgCostScale decimales.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return costoEntrada.Round(AvgCostScale)
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.DivRound(sum, AvgCostScale)
}

// FitsScale indica si d se representa sin pérdida con scale decimales.
func FitsScale(d decimal.Decimal, scale int32) bool {
	return d.Round(scale).Equal(d)
}
