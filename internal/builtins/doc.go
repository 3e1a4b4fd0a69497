// Package builtins provides the built-in tool packs the assistant can call.
//
// # Overview
//
// Each pack groups related tools behind a single constructor that takes the
// pack's dependencies (a store, the timer manager, service endpoints) and
// returns a *tools.Pack ready for registration. Packs hold no global state;
// everything they touch is injected.
//
// # Tool Packs
//
// The package provides 8 packs with 22 tools:
//
// Tasks Pack (core.tasks):
//
//   - add_task: Add a task to the to-do list
//   - list_tasks: Read the to-do list back
//   - clear_tasks: Clear the whole list
//
// Notes Pack (core.notes):
//
//   - write_note: Save or update a named note
//   - show_notes: Read saved notes back
//
// Files Pack (core.files):
//
//   - find_and_read_file: Locate a file by name and read it after confirmation
//
// Comms Pack (core.comms):
//
//   - send_email: Send an email via Gmail SMTP
//
// Web Pack (core.web):
//
//   - get_weather: Current weather for a city
//   - search_web: DuckDuckGo search
//   - wikipedia_summary: Short topic summary
//   - get_news_headlines: Top news headlines
//   - get_joke_or_quote: Random joke or quote
//
// Utils Pack (core.utils):
//
//   - generate_password: Random password
//   - get_system_info: CPU, RAM, and disk usage
//   - solve_math: Evaluate a math expression
//   - convert_currency: Currency conversion
//   - convert_units: Unit conversion
//
// Timers Pack (core.timers):
//
//   - set_timer: Start a countdown
//   - cancel_timer: Cancel a countdown by ID
//   - list_timers: List running countdowns
//
// Calendar Pack (core.calendar):
//
//   - get_calendar_events: Upcoming Google Calendar events
//   - add_calendar_event: Create a calendar event
//
// # Registration
//
// Construct a pack and register it:
//
//	registry.RegisterPack(builtins.TasksPack(taskStore))
//	registry.RegisterPack(builtins.WebPack(cfg.Services, logger))
//
// # Results
//
// Every handler returns a plain string meant to be spoken aloud. Expected
// failures (service down, nothing found, not logged in) are rendered as
// sentences, not errors; a non-nil error is reserved for malformed input
// and is turned into a spoken apology by the dispatcher.
package builtins
