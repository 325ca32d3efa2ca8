package main

import "habeshaexpat/internal/app"

// @title           Habesha Expat Admin API
// @version         1.0
// @description     Authentication and back-office operations for the Habesha Expat admin dashboard.
// @BasePath        /
func main() {
	app.Run()
}
