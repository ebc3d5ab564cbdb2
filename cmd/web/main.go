// @title           Boilerplate Backend API
// @version         1.0
// @description     REST API: регистрация, подтверждение email, JWT-аутентификация и управление пользователями.
// @contact.name    API Support
// @contact.email   support@example.com
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:3000
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Формат: "Bearer {access token}"

package main

import "boilerplate_backend/internal/app"

func main() {
	app.Run()
}
