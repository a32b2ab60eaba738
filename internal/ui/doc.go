// Package ui provides the pricewatch terminal interface.
//
// The UI is a Bubble Tea program. It never talks to the backend directly:
// every user action becomes an intent on search.Container and every frame
// renders the container's latest snapshot.
//
// # Views
//
//   - Results: product list on the left, detail card for the selection on
//     the right. The split is 40/60, or 30/70 on extra wide terminals.
//   - Activity: the tail of the structured log file, colored by level.
//
// # Event Flow
//
//  1. Run builds the Model and starts the program.
//  2. A tick every DefaultUIInterval re-reads the container snapshot.
//  3. Submitting a query dispatches StartSearch, or SearchAndFetch when
//     auto_fetch is on. The returned request is awaited in a command so the
//     snapshot is re-read as soon as it settles.
//  4. Context cancellation ends the program.
//
// # Key Bindings
//
//   - /: Focus the search box; enter submits, esc leaves it
//   - r: Fetch products for the last started search
//   - c: Clear results
//   - j/k, g/G, ctrl+d/u: Move the selection
//   - tab: Switch between list and detail panes
//   - q/a: Results and activity views
//   - T: Cycle theme
//   - h/?: Help
//   - e/ctrl+c: Quit
package ui
