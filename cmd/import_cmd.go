package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	schedulingv1 "github.com/Leganyst/class-scheduler/internal/api/scheduling/v1"
	"github.com/Leganyst/class-scheduler/internal/scheduling"
	"github.com/Leganyst/class-scheduler/internal/service"
)

type importOptions struct {
	File    string
	Addr    string
	User    string
	Timeout time.Duration
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import --file <batch.yaml> [--addr host:port] [--user <uuid>]",
		Short: "Submit a YAML or JSON batch of schedules as one all-or-nothing bulk create",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(opts.File) == "" {
				return errors.New("--file is required")
			}
			data, err := os.ReadFile(opts.File)
			if err != nil {
				return err
			}
			items, err := parseBatch(data)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()
			return runImport(ctx, cmd.OutOrStdout(), opts, items)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "batch file (YAML or JSON)")
	cmd.Flags().StringVar(&opts.Addr, "addr", "localhost:50051", "scheduler gRPC address")
	cmd.Flags().StringVar(&opts.User, "user", "", "acting user id sent as x-user-id")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "request timeout")
	return cmd
}

// parseBatch accepts either a bare list of schedules or {schedules: [...]}.
// JSON input parses as YAML.
func parseBatch(data []byte) ([]scheduling.ScheduleInput, error) {
	var wrapped struct {
		Schedules []scheduling.ScheduleInput `yaml:"schedules"`
	}
	if err := yaml.Unmarshal(data, &wrapped); err == nil && len(wrapped.Schedules) > 0 {
		return wrapped.Schedules, nil
	}

	var items []scheduling.ScheduleInput
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse batch: %w", err)
	}
	if len(items) == 0 {
		return nil, errors.New("batch has no schedules")
	}
	return items, nil
}

func bulkRequest(items []scheduling.ScheduleInput) (*structpb.Struct, error) {
	list := make([]any, len(items))
	for i, it := range items {
		list[i] = map[string]any{
			"room_id":       it.RoomID,
			"course_id":     it.CourseID,
			"instructor_id": it.InstructorID,
			"date":          it.Date,
			"start_time":    it.StartTime,
			"end_time":      it.EndTime,
		}
	}
	return structpb.NewStruct(map[string]any{"schedules": list})
}

func runImport(ctx context.Context, out io.Writer, opts importOptions, items []scheduling.ScheduleInput) error {
	conn, err := grpc.NewClient(opts.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return err
	}
	defer conn.Close()

	req, err := bulkRequest(items)
	if err != nil {
		return err
	}
	client := schedulingv1.NewSchedulingServiceClient(conn)
	resp, err := client.BulkCreateSchedules(service.WithActor(ctx, opts.User), req)
	if err != nil {
		return err
	}

	report, err := yaml.Marshal(resp.AsMap())
	if err != nil {
		return err
	}
	if _, err := out.Write(report); err != nil {
		return err
	}
	if ok, _ := resp.AsMap()["success"].(bool); !ok {
		return errors.New("batch rejected, nothing was written")
	}
	return nil
}
