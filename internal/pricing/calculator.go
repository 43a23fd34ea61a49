package pricing

// Calculator is a working copy of one product's inputs. Every setter
// recomputes the breakdown before returning, so Result never lags behind
// the inputs. It is not safe for concurrent use.
type Calculator struct {
	strategy  Strategy
	productID string
	stored    Inputs
	inputs    Inputs
	result    Breakdown
}

func NewCalculator(s Strategy) *Calculator {
	c := &Calculator{strategy: s}
	c.recompute()
	return c
}

// Load points the calculator at a product. When the identity differs from the
// current one, unsaved edits are dropped and the stored values take over.
func (c *Calculator) Load(productID string, stored Inputs) {
	if productID == c.productID && c.productID != "" {
		return
	}
	c.productID = productID
	c.stored = stored
	c.inputs = stored
	c.recompute()
}

// Reset discards edits and restores the stored values of the loaded product.
func (c *Calculator) Reset() {
	c.inputs = c.stored
	c.recompute()
}

func (c *Calculator) ProductID() string { return c.productID }

func (c *Calculator) Inputs() Inputs { return c.inputs }

func (c *Calculator) Result() Breakdown { return c.result }

func (c *Calculator) Strategy() Strategy { return c.strategy }

func (c *Calculator) SetCost(v float64) {
	c.inputs.Cost = v
	c.recompute()
}

func (c *Calculator) SetShipping(v float64) {
	c.inputs.Shipping = v
	c.recompute()
}

func (c *Calculator) SetTaxRate(v float64) {
	c.inputs.TaxRate = v
	c.recompute()
}

func (c *Calculator) SetMargin(v float64) {
	c.inputs.Margin = v
	c.recompute()
}

func (c *Calculator) recompute() {
	c.result = c.strategy.Compute(c.inputs)
}
