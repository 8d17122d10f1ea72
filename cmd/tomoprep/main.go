// Command-line interface for preparing cryo-ET training data.
// Provides merge of point annotations into segmentation volumes and
// validation of training runs.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/janelia-flyem/tomoprep/config"
	"github.com/janelia-flyem/tomoprep/labels"
	"github.com/janelia-flyem/tomoprep/merge"
	"github.com/janelia-flyem/tomoprep/storage"
	"github.com/janelia-flyem/tomoprep/tomo"
	"github.com/janelia-flyem/tomoprep/train"
)

var (
	// Display usage if true.
	showHelp = flag.Bool("help", false, "")

	// Run in verbose mode if true.
	runVerbose = flag.Bool("verbose", false, "")

	// Path to TOML configuration file.  Leave unset for built-in defaults.
	configPath = flag.String("config", "", "")
)

const helpMessage = `
tomoprep prepares cryo-electron tomography datasets for training

Usage: tomoprep [options] <command>

      -config     =string   Path to TOML configuration file.
      -verbose    (flag)    Run in verbose mode.
  -h, -help       (flag)    Show help message

Commands:

	about
	help
	merge [<base>] [output=<name>] [labels=<class>,<class>,...]
	train [<manifest path>] [patch=x,y,z] [stride=x,y,z]

merge paints the point annotations of every dataset under <base>/annotations
into the dataset's segmentation volume and writes the merged volume next to it.
The base can be a local directory or a bucket URL like "gs://bucket/data".

train checks the training run described by the configuration and writes a
JSON manifest of the run to the given path or standard output.  The patch
shape and stride can be overridden; the spatial pad grows to fit the patch.
`

var usage = func() {
	fmt.Print(helpMessage)
}

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() >= 1 && strings.ToLower(flag.Args()[0]) == "help" {
		*showHelp = true
	}

	if *runVerbose {
		tomo.SetLogMode(tomo.DebugMode)
	}
	if *showHelp || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	cfg.Logging.SetLogger()

	// Capture ctrl+c and other interrupts.  Then cancel any work in progress.
	ctx, cancel := context.WithCancel(context.Background())
	stopSig := make(chan os.Signal, 1)
	go func() {
		for sig := range stopSig {
			log.Printf("Stop signal captured: %q.  Shutting down...\n", sig)
			cancel()
		}
	}()
	signal.Notify(stopSig, os.Interrupt, syscall.SIGTERM)

	command := tomo.Command(flag.Args())
	err = DoCommand(ctx, cfg, command, os.Stdout)
	cancel()
	tomo.Shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// DoCommand serves as a switchboard for commands.
func DoCommand(ctx context.Context, cfg *config.Config, cmd tomo.Command, out io.Writer) error {
	if len(cmd) == 0 {
		return fmt.Errorf("Blank command!")
	}

	switch cmd.Name() {
	case "merge":
		return DoMerge(ctx, cfg, cmd, out)
	case "train":
		return DoTrain(cfg, cmd, out)
	case "about":
		fmt.Fprintf(out, "tomoprep %s\n", tomo.Version())
		if loc := cfg.Location(); loc != "" {
			fmt.Fprintf(out, "Configuration: %s\n", loc)
		}
		fmt.Fprintf(out, "Label classes: %s\n", strings.Join(cfg.Labels.Names(), ", "))
	case "help":
		fmt.Fprint(out, helpMessage)
	default:
		return fmt.Errorf("unknown command %q; try 'tomoprep help'", cmd.Name())
	}
	return nil
}

// DoMerge performs the "merge" command, painting annotations into every dataset.
func DoMerge(ctx context.Context, cfg *config.Config, cmd tomo.Command, out io.Writer) error {
	mergeCfg := cfg.Merge
	var base string
	if overflow := cmd.CommandArgs(&base); len(overflow) != 0 {
		return fmt.Errorf("merge takes at most one base argument, got extra %v", overflow)
	}
	if setting, found := cmd.Parameter(tomo.KeyBase); found {
		base = setting
	}
	if base != "" {
		mergeCfg.Base = base
	}
	if output, found := cmd.Parameter(tomo.KeyOutput); found {
		mergeCfg.Output = output
	}
	table := cfg.Labels
	if names, found := cmd.Parameter(tomo.KeyLabels); found {
		var err error
		if table, err = selectLabels(table, names); err != nil {
			return err
		}
	}

	store, err := storage.Open(ctx, mergeCfg.Base)
	if err != nil {
		return err
	}
	defer store.Close()

	driver, err := merge.NewDriver(store, mergeCfg, table)
	if err != nil {
		return err
	}
	results, err := driver.MergeAll(ctx)
	for _, r := range results {
		fmt.Fprintf(out, "%s: wrote %s (%s)\n", r.Dataset, r.Output, r.Summary())
	}
	return err
}

// selectLabels returns the classes of the table named in a comma-separated list,
// in table order.
func selectLabels(table labels.Table, names string) (labels.Table, error) {
	wanted := make(map[string]bool)
	for _, name := range strings.Split(names, ",") {
		if name = strings.TrimSpace(name); name != "" {
			wanted[name] = true
		}
	}
	var selected labels.Table
	for _, cl := range table {
		if wanted[cl.Name] {
			selected = append(selected, cl)
			delete(wanted, cl.Name)
		}
	}
	if len(wanted) != 0 {
		var unknown []string
		for name := range wanted {
			unknown = append(unknown, name)
		}
		return nil, fmt.Errorf("unknown label classes %v; configured classes are %v", unknown, table.Names())
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no label classes selected by %q", names)
	}
	return selected, nil
}

// DoTrain performs the "train" command, writing a manifest of the configured training run.
func DoTrain(cfg *config.Config, cmd tomo.Command, out io.Writer) error {
	var manifestPath string
	if overflow := cmd.CommandArgs(&manifestPath); len(overflow) != 0 {
		return fmt.Errorf("train takes at most one manifest path, got extra %v", overflow)
	}
	trainCfg := cfg.Train
	if setting, found := cmd.Parameter(tomo.KeyPatch); found {
		patch, err := tomo.StringToPoint3d(setting, ",")
		if err != nil {
			return fmt.Errorf("bad patch shape: %v", err)
		}
		trainCfg.PatchShape = patch
		trainCfg.PadSize.SetMaximum(patch)
	}
	if setting, found := cmd.Parameter(tomo.KeyStride); found {
		stride, err := tomo.StringToPoint3d(setting, ",")
		if err != nil {
			return fmt.Errorf("bad patch stride: %v", err)
		}
		trainCfg.PatchStride = stride
	}
	m, err := train.BuildManifest(trainCfg)
	if err != nil {
		return err
	}
	if manifestPath == "" {
		return train.WriteManifest(out, m)
	}
	f, err := os.Create(manifestPath)
	if err != nil {
		return fmt.Errorf("can't create manifest %q: %v", manifestPath, err)
	}
	if err := train.WriteManifest(f, m); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote training manifest for %d training and %d validation files to %s\n",
		len(m.TrainFiles), len(m.ValFiles), manifestPath)
	return nil
}
