package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"gioui.org/app"
	"github.com/egtoney/osprite"
	"github.com/egtoney/osprite/gui"
	"github.com/egtoney/osprite/store"
	"github.com/egtoney/osprite/utils"
)

const HelpBanner = `
┌─┐┌─┐┌─┐┬─┐┬┌┬┐┌─┐
│ │└─┐├─┘├┬┘│ │ ├┤
└─┘└─┘┴  ┴└─┴ ┴ └─┘

Pixel art editor and sprite scripting tool.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", "", "Source image, directory or URL (blank canvas when empty, - for stdin)")
	destination = flag.String("out", pipeName, "Destination")
	newWidth    = flag.Int("width", 0, "Canvas width of a blank document")
	newHeight   = flag.Int("height", 0, "Canvas height of a blank document")
	zoom        = flag.Int("zoom", 0, "Initial zoom factor")
	scriptPath  = flag.String("script", "", "Gesture script replayed on the image")
	scale       = flag.Int("scale", 1, "Integer scale factor of the exported image")
	configPath  = flag.String("config", filepath.Join(osprite.ConfigDir(), osprite.ConfigFile), "Config file")
	initConfig  = flag.Bool("init", false, "Write the default config file and exit")
	preview     = flag.Bool("preview", false, "Open the editor window")
	storeDir    = flag.String("store", "", "Session store directory (overrides the config)")
	debug       = flag.Bool("debug", false, "Log debug messages to stderr")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *debug {
		osprite.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if *initConfig {
		if err := osprite.WriteConfig(*configPath, osprite.DefaultConfig()); err != nil {
			fatal("Unable to write the config file: ", err)
		}
		fmt.Fprintf(os.Stderr, "The default config has been written to: %s\n",
			utils.DecorateText(*configPath, utils.SuccessMessage))
		return
	}

	conf, err := osprite.LoadConfig(*configPath)
	if err != nil {
		fatal("Unable to load the config file: ", err)
	}
	if *newWidth > 0 {
		conf.Canvas.Width = *newWidth
	}
	if *newHeight > 0 {
		conf.Canvas.Height = *newHeight
	}
	if *zoom > 0 {
		conf.Canvas.Zoom = *zoom
	}
	if *storeDir != "" {
		conf.Store.Dir = *storeDir
	}

	opts, err := conf.SessionOptions()
	if err != nil {
		fatal("Invalid settings: ", err)
	}

	script, err := loadScript(*scriptPath)
	if err != nil {
		fatal("Unable to read the script: ", err)
	}

	op := &osprite.Ops{
		Src:      *source,
		Dst:      *destination,
		PipeName: pipeName,
		Script:   script,
		Options:  opts,
		Scale:    *scale,
		Workers:  *workers,
	}

	if *preview {
		if err := runEditor(op, conf); err != nil {
			fatal("Unable to start the editor: ", err)
		}
		return
	}

	if err := op.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}

// loadScript parses the script file at path, nil when path is empty.
func loadScript(path string) (*osprite.Script, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return osprite.ParseScript(f)
}

// runEditor restores the stored workspace, opens the source image in it
// and hands control over to the Gio event loop.
func runEditor(op *osprite.Ops, conf *osprite.Config) error {
	ro, err := conf.RenderOptions()
	if err != nil {
		return err
	}

	ws := osprite.NewWorkspace(store.NewFileStore(conf.Store.Dir), op.Options)
	if err := ws.Load(); err != nil {
		return err
	}

	if op.Src != "" {
		img, err := op.Load(context.Background(), op.Src)
		if err != nil {
			return err
		}
		if _, err := ws.OpenImage(img, filepath.Base(op.Src)); err != nil {
			return err
		}
	}
	if op.Script != nil {
		if err := op.Script.Run(ws.Active()); err != nil {
			return fmt.Errorf("script: %w", err)
		}
	}

	go func() {
		if err := gui.NewGUI(ws, op.Options, ro).Run(); err != nil {
			fatal("Editor error: ", err)
		}
		os.Exit(0)
	}()
	app.Main()

	return nil
}

func fatal(msg string, err error) {
	log.Fatal(utils.DecorateText(msg, utils.ErrorMessage),
		utils.DecorateText(err.Error(), utils.DefaultMessage))
}
