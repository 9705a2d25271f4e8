package plugins

import (
	"errors"

	"github.com/example/plugincli/pkg/plugin"
)

// Addition does integer arithmetic over a short series of numbers
type Addition struct {
	modulus int
}

// AdditionOptions are the options of the addition command
type AdditionOptions struct {
	Modulus int `default:"0"`
}

// NewAddition creates the calculator
func NewAddition(opts AdditionOptions) (*Addition, error) {
	if opts.Modulus < 0 {
		return nil, errors.New("modulus must not be negative")
	}
	return &Addition{modulus: opts.Modulus}, nil
}

// Operands are the numbers an operation works on. The first two are
// required.
type Operands struct {
	First  int
	Second int
	Third  int `default:"0"`
	Fourth int `default:"0"`
}

// Sum adds the operands
func (a *Addition) Sum(args Operands) int {
	return a.reduce(args.First + args.Second + args.Third + args.Fourth)
}

// Product multiplies the operands. Operands left at zero are skipped.
func (a *Addition) Product(args Operands) int {
	result := args.First * args.Second
	for _, n := range []int{args.Third, args.Fourth} {
		if n != 0 {
			result *= n
		}
	}
	return a.reduce(result)
}

func (a *Addition) reduce(n int) int {
	if a.modulus > 0 {
		return n % a.modulus
	}
	return n
}

// Doc implements plugin.Documented
func (a *Addition) Doc(member string) string {
	operands := `
		:param first: first number
		:param second: second number
		:param third: third number (optional)
		:param fourth: fourth number (optional)`

	switch member {
	case "":
		return "A plugin that adds a series of numbers together"
	case plugin.ConstructorDoc:
		return ":param modulus: reduce results modulo this value when positive"
	case "Sum":
		return "Add up to four numbers." + operands
	case "Product":
		return "Multiply up to four numbers." + operands
	}
	return ""
}
