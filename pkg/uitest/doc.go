// Package uitest provides testing utilities for Bubble Tea models.
//
// It pairs a [teatest] harness of a given terminal [Size] with ANSI style
// verification:
//
//	func TestModel(t *testing.T) {
//	    t.Parallel()
//	    uitest.SetupColorProfile()
//
//	    tm := uitest.NewTestModel(t, NewModel(), uitest.Standard)
//	    tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
//	    uitest.WaitForText(t, tm.Output(), "done")
//	}
//
// Rendered views can be checked for styling:
//
//	uitest.AssertStyle(t, model.View(), "true", uitest.Style{
//	    Foreground: uitest.HexColor(render.DefaultTheme().Success),
//	    Bold:       true,
//	})
//
// [teatest]: https://pkg.go.dev/github.com/charmbracelet/x/exp/teatest
package uitest
