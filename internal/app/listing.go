package app

import (
	"fmt"
	"io"

	"consultantpdf/internal/directory"
)

func printSpecialities(w io.Writer, heading string, specs []directory.Speciality) {
	fmt.Fprintln(w, heading)
	for _, s := range specs {
		fmt.Fprintf(w, "- %s: %s\n", s.Code, s.Name)
	}
}

func printPlans(w io.Writer, heading string, plans []string) {
	fmt.Fprintln(w, heading)
	for _, p := range plans {
		fmt.Fprintf(w, "- %s\n", p)
	}
}
