package desktop

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

// Run opens a window showing the strip and blocks until it is closed or ctx
// is canceled.
func Run(ctx context.Context, title string, width, height float32, opts Options) error {
	a := app.New()
	win := a.NewWindow(title)

	c := NewCanvas(ctx, opts)
	defer c.Destroy()
	win.SetContent(c)
	c.Bind(win)
	win.Resize(fyne.NewSize(width, height))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			a.Quit()
		case <-done:
		}
	}()

	win.ShowAndRun()
	return ctx.Err()
}
