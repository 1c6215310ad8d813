package charset_test

import (
	"errors"
	"fmt"

	"codello.dev/der/charset"
)

func ExampleRegistry() {
	r := charset.Default()
	s, err := r.Decode(0x13, []byte("HELLO WORLD"))
	fmt.Println(s, err)

	_, err = r.Decode(0x13, []byte("HELLO@WORLD"))
	var ue *charset.UnmappableError
	if errors.As(err, &ue) {
		fmt.Printf("%q at offset %d\n", ue.Rune, ue.Offset)
	}
	// Output:
	// HELLO WORLD <nil>
	// '@' at offset 5
}
