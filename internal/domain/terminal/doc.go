// Package terminal is a small simulated shell over the virtual
// filesystem.
//
// Each Session keeps a working directory and a bounded history. Exec
// interprets one line: pwd, cd, ls, cat, echo with > and >> redirection,
// touch, mkdir, rm, rmdir, tree, find, file, whoami, date, history, clear
// and help. Errors come back as shell-style text with a non-zero exit
// code; an unknown command exits 127 with "command not found".
package terminal
