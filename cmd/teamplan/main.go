// Command teamplan breaks team assignments into scheduled subtasks.
package main

func main() {
	Execute()
}
