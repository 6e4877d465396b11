//go:build !linux

package pill

// positionWindow на macOS и Windows окно остаётся там, где его поставила система;
// пользователь перетаскивает его сам.
func positionWindow(title string, width, height int) {}
