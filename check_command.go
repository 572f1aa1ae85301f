package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"imagededup/analyzer"
	"imagededup/database"
	"imagededup/hashstore"
	"imagededup/imageprocessor"
	"imagededup/types"
	"imagededup/utils"
)

const maxPathWidth = 60

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var fromDB bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Group hashed images into duplicate and suspicious sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config

			var loader analyzer.Loader = hashstore.FileLoader{Path: cfg.Paths.StorePath}
			if fromDB {
				db, err := ctx.openExistingMirror()
				if err != nil {
					return err
				}
				defer db.Close()
				loader = database.NewMirror(db)
			}

			out := cmd.OutOrStdout()
			err := analyzer.New(loader).FindDuplicates(func(duplicates, suspicious []types.Group, store *types.HashStore) {
				renderGroups(out, duplicates, suspicious, store)
			})
			if errors.Is(err, analyzer.ErrNoStore) {
				return fmt.Errorf("%w (run `imagededup hash <folder>` first)", err)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&fromDB, "from-db", false, "Read hashes from the SQLite mirror instead of the store file")
	return cmd
}

func renderGroups(out io.Writer, duplicates, suspicious []types.Group, store *types.HashStore) {
	fmt.Fprintf(out, "Analyzed %s\n", utils.Plural(store.Len(), "image"))

	if len(duplicates) == 0 && len(suspicious) == 0 {
		fmt.Fprintln(out, successColor("No duplicates found."))
		return
	}

	if len(duplicates) > 0 {
		fmt.Fprintf(out, "\n%s\n", alertColor(fmt.Sprintf("Duplicate groups (%d)", len(duplicates))))
		for i, group := range duplicates {
			fmt.Fprintf(out, "Group %d\n%s\n", i+1, groupTable(group, store))
		}
	}
	if len(suspicious) > 0 {
		fmt.Fprintf(out, "\n%s\n", warningColor(fmt.Sprintf("Suspicious groups (%d)", len(suspicious))))
		for i, group := range suspicious {
			fmt.Fprintf(out, "Group %d\n%s\n", i+1, groupTable(group, store))
		}
	}
}

// groupTable lists each member's hashes and its bit distance from the seed
func groupTable(group types.Group, store *types.HashStore) string {
	headers := []string{"#", "Image"}
	for _, kind := range types.HashKinds {
		headers = append(headers, string(kind))
	}
	headers = append(headers, "Bits off")

	seed, _ := store.Get(group[0])
	rows := make([][]string, 0, len(group))
	for i, path := range group {
		set, _ := store.Get(path)
		row := []string{strconv.Itoa(i + 1), utils.ShortenPath(path, maxPathWidth)}
		for _, kind := range types.HashKinds {
			value, _ := set.Get(kind)
			row = append(row, value)
		}
		if i == 0 {
			row = append(row, "seed")
		} else {
			row = append(row, distanceLabel(seed, set))
		}
		rows = append(rows, row)
	}

	aligns := make([]columnAlignment, len(headers))
	aligns[0] = alignRight
	aligns[len(aligns)-1] = alignRight
	return renderTable(headers, rows, aligns)
}

// distanceLabel sums the Hamming distances over all kinds
func distanceLabel(seed, other types.HashSet) string {
	total := 0
	for _, kind := range types.HashKinds {
		a, _ := seed.Get(kind)
		b, _ := other.Get(kind)
		d, err := imageprocessor.CalculateHammingDistance(a, b)
		if err != nil {
			return "-"
		}
		total += d
	}
	return strconv.Itoa(total)
}
