// Package bootstrap runs a finite command with a uniform lifecycle:
// validate config, build the logger, run start hooks, run the task under
// a signal-aware context, then run stop hooks within a grace period.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.OnStart(setupTelemetry)
//	app.OnStop(flushTelemetry)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return driver.Run(ctx, input)
//	})
package bootstrap
