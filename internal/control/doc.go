// Package control maps user commands onto an engine, independent of the
// frontend that produced them.
//
// Frontends translate their own key events into key names and call
// [ParseKey]; the resulting [Command] is applied through a [Manual]:
//
//	m := control.NewManual(engine)
//	m.Point(x, y)
//	m.Apply(control.ParseKey("b")) // burst at the pointer
//
// Commands that only concern the frontend ([Record], [ToggleHUD], [Quit])
// are reported back unhandled.
package control
