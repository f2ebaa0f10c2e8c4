// Package tui renders plans for the terminal.
//
// RenderPlan produces a static, styled summary for plain command output.
// PlanView is an interactive bubbletea model that lists subtasks in a table
// and can filter them by member:
//
//	program, view := tui.NewPlanProgram(tui.FromResult(req, result))
//	go watchAndSend(program) // program.Send(tui.PlanMsg{Plan: updated})
//	_, err := program.Run()
//
// Keys: tab and shift+tab cycle the member filter, arrows move the cursor,
// q or ctrl+c quits.
package tui
