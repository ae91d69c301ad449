package main

import (
	"fmt"
	"os"

	"github.com/chainpass/webhook-notify/partner"
)

/* validate-partners - Standalone CLI tool to validate partners.yaml
 * Usage: go run cmd/validate-partners/main.go [partners.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	partnersFile := "partners.yaml"
	if len(os.Args) > 1 {
		partnersFile = os.Args[1]
	}

	fmt.Printf("Validating partners file: %s\n\n", partnersFile)

	loader := partner.NewLoader()
	if err := loader.Load(partnersFile); err != nil {
		fmt.Fprintf(os.Stderr, "VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	partners := loader.List()
	fmt.Printf("VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d partner(s):\n", len(partners))

	for i, p := range partners {
		fmt.Printf("\n%d. Partner: %s\n", i+1, p.ID)
		fmt.Printf("   Name:         %s\n", p.Name)
		fmt.Printf("   Callback URL: %s\n", p.CallbackURL)
		fmt.Printf("   Active:       %v\n", p.Active)
		fmt.Printf("   Secret:       configured (%d bytes)\n", len(p.Secret))
	}

	fmt.Printf("\nAll partners are valid\n")
	os.Exit(0)
}
