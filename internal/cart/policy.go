package cart

import "fmt"

// Policy decides what AddItem does with a product from a different
// restaurant than the one the cart is scoped to.
type Policy int

const (
	// PolicyReject refuses the product and leaves the cart untouched.
	PolicyReject Policy = iota
	// PolicyReplace empties the cart and then adds the product.
	PolicyReplace
)

func (p Policy) String() string {
	switch p {
	case PolicyReject:
		return "reject"
	case PolicyReplace:
		return "replace"
	default:
		return "unknown"
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "reject":
		return PolicyReject, nil
	case "replace":
		return PolicyReplace, nil
	default:
		return PolicyReject, fmt.Errorf("unknown cart policy %q", s)
	}
}
