package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/MedReg-Intelligence/internal/application/approval"
	"github.com/turtacn/MedReg-Intelligence/internal/application/engine"
	rtypes "github.com/turtacn/MedReg-Intelligence/pkg/types/record"
)

// NewEvaluateCmd scores a single record from a JSON file or stdin.
func NewEvaluateCmd(deps Deps, opts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a record for automated approval routing",
		Long:  "Reads one record as JSON and emits the approval verdict.\nThe record_type field selects the regulatory-update or legal-case path.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dto, err := readRecord(file)
			if err != nil {
				return err
			}
			return withEngine(deps, opts, func(ctx context.Context, eng engine.Engine) error {
				var verdict approval.Verdict
				switch dto.RecordType {
				case rtypes.TypeLegalCase:
					verdict = eng.EvaluateLegalCase(ctx, dto)
				default:
					verdict = eng.EvaluateRegulatoryUpdate(ctx, dto)
				}
				return printResult(deps.Out, opts.OutputFormat, verdict)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "record JSON file (reads stdin when omitted)")
	return cmd
}

func readRecord(path string) (rtypes.RecordDTO, error) {
	var dto rtypes.RecordDTO

	in := os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return dto, fmt.Errorf("failed to open record file: %w", err)
		}
		defer f.Close()
		in = f
	}

	if err := json.NewDecoder(in).Decode(&dto); err != nil {
		return dto, fmt.Errorf("failed to decode record JSON: %w", err)
	}
	return dto, nil
}
