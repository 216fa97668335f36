// Package logging provides structured logging using uber/zap.
//
// Production logs are JSON; development logs are colored console lines.
// Components receive a named child logger:
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	wm := window.NewManager(catalog, geometry).WithLogger(logger.Component("window"))
//	logger.Info("server starting", zap.String("addr", ":8000"))
package logging
