package datadesk_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/datadesk"
	"github.com/aretw0/datadesk/pkg/adapters/memory"
	"github.com/aretw0/datadesk/pkg/domain"
)

const registryJSON = `[
  {"ID": 1, "FullName": "Gas station #1", "global_id": 1001, "ShortName": "GS1",
   "AdmArea": "Central", "District": "Arbat", "Address": "Street 1",
   "Owner": "Lukoil", "TestDate": "2021-06-15T00:00:00"},
  {"ID": 2, "FullName": "Gas station #2", "global_id": 1002, "ShortName": "GS2",
   "AdmArea": "Central", "District": "Tverskoy", "Address": "Street 2",
   "Owner": "Gazprom", "TestDate": "2020-03-01T00:00:00"}
]`

// printCommands shows commands the way a minimal transport would.
func printCommands(cmds []domain.Command) {
	for _, cmd := range cmds {
		switch p := cmd.Payload.(type) {
		case domain.PlainText:
			fmt.Println(p.Text)
		case domain.RenderMenu:
			fmt.Println(p.Frame.Prompt)
			for _, c := range p.Frame.Choices() {
				fmt.Printf("  [%s] %s\n", c.Token, c.Label)
			}
		case domain.FileAttachment:
			fmt.Printf("file %s (%s)\n", p.Name, p.Caption)
		}
	}
}

func ExampleNew() {
	desk := datadesk.New(datadesk.WithStore(memory.NewStore(memory.WithTTL(0))))
	ctx := context.Background()

	cmds, err := desk.Dispatch(ctx, domain.DatasetUploaded("alice", []byte(registryJSON), "stations.json"))
	if err != nil {
		log.Fatal(err)
	}
	printCommands(cmds)

	cmds, err = desk.Dispatch(ctx, domain.ActionSelected("alice", "Sorting"))
	if err != nil {
		log.Fatal(err)
	}
	printCommands(cmds)

	// Output:
	// ✅ File processed: 2 records loaded.
	// What would you like to do with the data?
	//   [Sorting] ↕️ Sort
	//   [Filtration] 🔎 Filter
	// How would you like to sort the data?
	//   [SortTestDateAscending] Test date ⬆️
	//   [SortTestDateDescending] Test date ⬇️
	//   [UniversalSort] Sort by any field
	//   [Back] ⬅️ Back
}
