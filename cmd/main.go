package main

import "taskdesk/internal/app"

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	app.MustConnectPostgres()
	defer app.DisconnectPostgres()

	app.MustOpenLocalStore()

	app.MustListenAndServeHTTP()
}
