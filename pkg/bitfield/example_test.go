package bitfield_test

import (
	"fmt"

	"github.com/isocell/isocell/pkg/bitfield"
)

func ExampleField_SetValue() {
	width := bitfield.Must("width", 24, 5, 10, 0, 300)

	word, err := width.SetValue(0, 1.2)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("raw:", width.Decode(word))
	fmt.Println("value:", width.Value(word))

	_, err = width.SetValue(word, 4.0)
	fmt.Println("overflow:", err != nil)
	// Output:
	// raw: 12
	// value: 1.2
	// overflow: true
}
