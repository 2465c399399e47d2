package osprite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/egtoney/osprite/utils"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// Ops describes one headless run: where the image comes from, which
// script is replayed on it and where the result goes.
type Ops struct {
	// Src is a file, a directory, an image URL or PipeName. An empty Src
	// starts from a blank canvas sized by Options.
	Src, Dst, PipeName string

	Script  *Script
	Options Options
	// Scale enlarges the exported image by an integer factor.
	Scale   int
	Workers int

	spinner *utils.Spinner
}

// result holds the outcome of processing one file of a directory.
type result struct {
	path string
	err  error
}

// Execute runs the operation. A directory source is processed
// concurrently, every supported image in it is written under Dst.
func (op *Ops) Execute(ctx context.Context) error {
	msg := fmt.Sprintf("%s %s",
		utils.DecorateText("▦ OSPRITE", utils.StatusMessage),
		utils.DecorateText("⇢ replaying the script...", utils.DefaultMessage),
	)
	op.spinner = utils.NewSpinner(os.Stderr, msg, time.Millisecond*80, term.IsTerminal(int(os.Stderr.Fd())))
	now := time.Now()

	var err error
	switch {
	case op.Src == "":
		err = op.processFile(ctx, "", op.Dst)
		op.printOpStatus(op.Dst, err)

	case utils.IsValidUrl(op.Src) || op.Src == op.PipeName:
		if err = op.checkDst(op.Dst); err == nil {
			err = op.processFile(ctx, op.Src, op.Dst)
		}
		op.printOpStatus(op.Dst, err)

	default:
		fi, serr := os.Stat(op.Src)
		if serr != nil {
			err = fmt.Errorf("failed to load the source image: %w", serr)
			op.printOpStatus(op.Src, err)
			return err
		}
		if fi.IsDir() {
			err = op.processDir(ctx)
			break
		}
		if err = op.checkDst(op.Dst); err == nil {
			err = op.processFile(ctx, op.Src, op.Dst)
		}
		op.printOpStatus(op.Dst, err)
	}

	if err == nil {
		fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	}
	return err
}

func (op *Ops) checkDst(dst string) error {
	if dst == op.PipeName || isValidExtension(filepath.Ext(dst), supportedExtensions) {
		return nil
	}
	return fmt.Errorf("%v file type not supported", filepath.Ext(dst))
}

func (op *Ops) processDir(ctx context.Context) error {
	if _, err := os.Stat(op.Dst); err != nil {
		if err := os.MkdirAll(op.Dst, 0755); err != nil {
			err = fmt.Errorf("unable to create the destination directory: %w", err)
			op.printOpStatus(op.Dst, err)
			return err
		}
	}
	// Limit the concurrently running workers to maxWorkers.
	if op.Workers <= 0 || op.Workers > maxWorkers {
		op.Workers = runtime.NumCPU()
	}

	ch := make(chan result)
	done := make(chan interface{})
	defer close(done)

	paths, errc := walkDir(done, op.Src, supportedExtensions)

	var wg sync.WaitGroup
	wg.Add(op.Workers)
	for i := 0; i < op.Workers; i++ {
		go func() {
			defer wg.Done()
			op.consumer(ctx, op.Dst, ch, done, paths)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	var err error
	for res := range ch {
		if res.err != nil && err == nil {
			err = fmt.Errorf("%s: %w", res.path, res.err)
		}
		op.printOpStatus(res.path, res.err)
	}
	if werr := <-errc; werr != nil && err == nil {
		err = werr
	}
	return err
}

// consumer reads the path names from the paths channel and replays the
// script on every image.
func (op *Ops) consumer(
	ctx context.Context,
	dest string,
	res chan<- result,
	done <-chan interface{},
	paths <-chan string,
) {
	for src := range paths {
		dst := filepath.Join(dest, filepath.Base(src))
		err := op.process(ctx, src, dst)

		select {
		case <-done:
			return
		case res <- result{path: src, err: err}:
		}
	}
}

// processFile processes a single image showing the progress indicator.
func (op *Ops) processFile(ctx context.Context, in, out string) error {
	successMsg := fmt.Sprintf("%s %s %s",
		utils.DecorateText("▦ OSPRITE", utils.StatusMessage),
		utils.DecorateText("⇢", utils.DefaultMessage),
		utils.DecorateText("the script has been replayed successfully ✔", utils.SuccessMessage),
	)
	errorMsg := fmt.Sprintf("%s %s %s",
		utils.DecorateText("▦ OSPRITE", utils.StatusMessage),
		utils.DecorateText("replaying the script failed...", utils.DefaultMessage),
		utils.DecorateText("✘", utils.ErrorMessage),
	)

	// Capture CTRL-C signal and restores back the cursor visibility.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	finished := make(chan struct{})
	defer func() {
		signal.Stop(signalChan)
		close(finished)
	}()
	go func() {
		select {
		case <-signalChan:
			op.spinner.RestoreCursor()
			os.Exit(1)
		case <-finished:
		}
	}()

	op.spinner.Start()
	err := op.process(ctx, in, out)
	if err != nil {
		op.spinner.Stop(errorMsg)
	} else {
		op.spinner.Stop(successMsg)
	}
	return err
}

// process loads in, replays the script and writes the result to out.
func (op *Ops) process(ctx context.Context, in, out string) error {
	img, err := op.Load(ctx, in)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := op.export(img, &buf, out); err != nil {
		return err
	}

	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("`-` should be used with a pipe for stdout")
		}
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("unable to create the destination file: %w", err)
	}
	return nil
}

// Load decodes the image at in: a file, an URL or PipeName. An empty in
// yields a nil image, standing for a blank canvas.
func (op *Ops) Load(ctx context.Context, in string) (image.Image, error) {
	switch {
	case in == "":
		return nil, nil
	case utils.IsValidUrl(in):
		data, err := utils.DownloadImage(ctx, in)
		if err != nil {
			return nil, err
		}
		return DecodeImage(bytes.NewReader(data))
	case in == op.PipeName:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return DecodeImage(os.Stdin)
	}
	return decodeImageFile(in)
}

// Process decodes the image read from r, or starts a blank canvas when r
// is nil, replays the script and encodes the flattened result to w in the
// format matching name.
func (op *Ops) Process(r io.Reader, w io.Writer, name string) error {
	var img image.Image
	if r != nil {
		var err error
		if img, err = DecodeImage(r); err != nil {
			return err
		}
	}
	return op.export(img, w, name)
}

func (op *Ops) export(img image.Image, w io.Writer, name string) error {
	var (
		s   *Session
		err error
	)
	if img == nil {
		s, err = NewSession(op.Options)
	} else {
		s, err = NewSessionFromImage(img, op.Options)
	}
	if err != nil {
		return err
	}

	if op.Script != nil {
		if err := op.Script.Run(s); err != nil {
			return fmt.Errorf("script: %w", err)
		}
	}
	if name == op.PipeName {
		name = ""
	}
	return EncodeImage(w, name, ScaleImage(s.Image(), op.Scale))
}

// printOpStatus displays the relevant information about the processed file.
func (op *Ops) printOpStatus(fname string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%s",
			utils.DecorateText("\nError processing the image: ", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err), utils.DefaultMessage),
		)
		return
	}
	if fname != op.PipeName {
		fmt.Fprintf(os.Stderr, "\nThe image has been saved as: %s %s\n\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
			utils.DefaultColor,
		)
	}
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each supported file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan interface{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() || !isValidExtension(filepath.Ext(f.Name()), srcExts) {
				return nil
			}
			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	return utils.Contains(extensions, ext)
}
