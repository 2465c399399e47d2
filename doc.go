/*
Package osprite is the paint engine of a pixel art editor. A Session holds
one document: an RGBA image buffer, a floating selection, the brush and its
tools, the view transform and an undo history of change sets. Editing is
driven by pointer gestures and keyboard shortcuts expressed in screen
coordinates, so the same session can back the gioui editor or a headless
script.

The package provides a command line interface which replays gesture scripts
on images or opens the editor window. To check the supported commands type:

	$ osprite --help

In case you wish to drive a session from your own code, here is a simple example:

	package main

	import (
		"fmt"
		"image/png"
		"os"

		"github.com/egtoney/osprite"
	)

	func main() {
		s, err := osprite.NewSession(osprite.DefaultOptions())
		if err != nil {
			panic(err)
		}
		s.SetViewport(0, 0, 512, 512)

		o := s.Origin()
		s.HandleCursorStart(o.X+10, o.Y+10, osprite.ButtonPrimary)
		s.HandleCursorMove(o.X+100, o.Y+40)
		s.HandleCursorEnd()

		if err := png.Encode(os.Stdout, s.Image()); err != nil {
			fmt.Printf("Error encoding image: %s", err.Error())
		}
	}
*/
package osprite
