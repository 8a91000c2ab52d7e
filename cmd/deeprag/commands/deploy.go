package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	deeprag "deeprag/engine/core"
	"deeprag/engine/tools"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var DeployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Partition a document directory and deploy its networks",
	Run: func(cmd *cobra.Command, args []string) {
		filesDir, _ := cmd.Flags().GetString("files-dir")
		fileList, _ := cmd.Flags().GetStringSlice("files")
		description, _ := cmd.Flags().GetString("description")
		constraints, _ := cmd.Flags().GetString("constraints")
		maxGroupSize, _ := cmd.Flags().GetInt("max-group-size")
		lifetime, _ := cmd.Flags().GetFloat64("lifetime")
		templatePath, _ := cmd.Flags().GetString("template")
		defsPath, _ := cmd.Flags().GetString("defs")
		analyzeTool, _ := cmd.Flags().GetString("analyze-tool")
		debug, _ := cmd.Flags().GetBool("debug")

		deeprag.DebugLoggingEnabled = debug

		if filesDir == "" && len(fileList) == 0 {
			fmt.Println("Either --files-dir or --files is required")
			os.Exit(1)
		}

		template, err := deeprag.LoadNetworkTemplate(templatePath)
		if err != nil {
			fmt.Printf("Failed to load network template: %v\n", err)
			os.Exit(1)
		}
		defs, err := deeprag.LoadCommonDefs(defsPath)
		if err != nil {
			fmt.Printf("Failed to load common definitions: %v\n", err)
			os.Exit(1)
		}

		loader := &deeprag.DirLoader{Root: filesDir}
		assembler := deeprag.NewNetworkAssembler(template, defs, loader)
		reservationist := deeprag.NewHTTPReservationist(viper.GetString("server"))

		deployer, err := deeprag.NewGroupDeployer(assembler, reservationist, lifetime)
		if err != nil {
			fmt.Printf("Failed to configure deployer: %v\n", err)
			os.Exit(1)
		}

		registry := tools.NewRegistry()
		tools.RegisterDefaults(registry, deployer, loader)

		pipeline, err := registry.Get("coarse_grouping")
		if err != nil {
			fmt.Printf("Pipeline unavailable: %v\n", err)
			os.Exit(1)
		}

		sly := deeprag.NewSideChannel()
		toolArgs := map[string]any{
			"files_directory":      filesDir,
			"file_list":            fileList,
			"user_description":     description,
			"grouping_constraints": constraints,
			"max_group_size":       maxGroupSize,
			"tools": map[string]string{
				"analyze_group": analyzeTool,
			},
		}

		output, err := pipeline.Invoke(context.Background(), toolArgs, sly)
		if err != nil {
			fmt.Printf("Deployment failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(output)
		printReservations(sly)
	},
}

func printReservations(sly *deeprag.SideChannel) {
	reservations, ok := sly.Get(deeprag.SideChannelReservations).([]deeprag.Reservation)
	if !ok || len(reservations) == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tADDRESS\tSTATE\tREMAINING")
	for i := range reservations {
		r := &reservations[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0fs\n", r.ID, r.Address, r.State, r.RemainingSeconds())
	}
	w.Flush()
}

func init() {
	DeployCmd.Flags().String("files-dir", "", "Directory containing the .txt documents")
	DeployCmd.Flags().StringSlice("files", nil, "Explicit file list (defaults to the .txt files in --files-dir)")
	DeployCmd.Flags().String("description", "", "Description of the document collection")
	DeployCmd.Flags().String("constraints", "", "Grouping constraints passed to the analyzer")
	DeployCmd.Flags().Int("max-group-size", deeprag.DefaultMaxGroupSize, "Maximum files per group")
	DeployCmd.Flags().Float64("lifetime", 3600, "Reservation lifetime in seconds")
	DeployCmd.Flags().String("template", deeprag.GroupTemplateFile, "Network template YAML")
	DeployCmd.Flags().String("defs", deeprag.CommonDefsFile, "Common definitions YAML")
	DeployCmd.Flags().String("analyze-tool", "name_analyzer", "Registered tool used for group analysis")
	DeployCmd.Flags().Bool("debug", false, "Enable debug logging")
}
