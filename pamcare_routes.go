package pamcare

import (
	"github.com/pamcare/pamcare/core"
	r "github.com/pamcare/pamcare/router"
)

func routes(app *core.App) {
	auth := app.RequireAuth

	app.Router().Register(
		// Passwordless onboarding, password login and token lifecycle.
		r.NewRoute("POST /api/auth/register").WithHandlerFunc(app.RegisterHandler),
		r.NewRoute("POST /api/auth/send-code").WithHandlerFunc(app.SendCodeHandler),
		r.NewRoute("POST /api/auth/verify-code").WithHandlerFunc(app.VerifyCodeHandler),
		r.NewRoute("POST /api/auth/complete-registration").WithHandlerFunc(app.CompleteRegistrationHandler),
		r.NewRoute("POST /api/auth/login").WithHandlerFunc(app.LoginHandler),
		r.NewRoute("POST /api/auth/refresh").WithHandlerFunc(app.RefreshHandler),
		r.NewRoute("POST /api/auth/logout").WithHandlerFunc(app.LogoutHandler).WithMiddleware(auth),
		r.NewRoute("GET /api/auth/me").WithHandlerFunc(app.MeHandler).WithMiddleware(auth),

		// Google sign in, web redirect flow and mobile id token flow.
		r.NewRoute("GET /api/auth/google").WithHandlerFunc(app.GoogleRedirectHandler),
		r.NewRoute("GET /api/auth/google/callback").WithHandlerFunc(app.GoogleCallbackHandler),
		r.NewRoute("POST /api/auth/google/token").WithHandlerFunc(app.GoogleTokenHandler),

		// Profile.
		r.NewRoute("GET /api/users/profile").WithHandlerFunc(app.GetProfileHandler).WithMiddleware(auth),
		r.NewRoute("PUT /api/users/profile").WithHandlerFunc(app.UpdateProfileHandler).WithMiddleware(auth),
		r.NewRoute("PUT /api/users/profile/picture").WithHandlerFunc(app.UpdateProfilePictureHandler).WithMiddleware(auth),

		// Appointments.
		r.NewRoute("POST /api/appointments").WithHandlerFunc(app.CreateAppointmentHandler).WithMiddleware(auth),
		r.NewRoute("GET /api/appointments").WithHandlerFunc(app.ListAppointmentsHandler).WithMiddleware(auth),
		r.NewRoute("GET /api/appointments/{id}").WithHandlerFunc(app.GetAppointmentHandler).WithMiddleware(auth),
		r.NewRoute("PATCH /api/appointments/{id}").WithHandlerFunc(app.UpdateAppointmentHandler).WithMiddleware(auth),
		r.NewRoute("DELETE /api/appointments/{id}").WithHandlerFunc(app.DeleteAppointmentHandler).WithMiddleware(auth),

		// Patient reports.
		r.NewRoute("POST /api/reports").WithHandlerFunc(app.CreateReportHandler).WithMiddleware(auth),
		r.NewRoute("POST /api/reports/upload").WithHandlerFunc(app.UploadReportHandler).WithMiddleware(auth),
		r.NewRoute("GET /api/reports").WithHandlerFunc(app.ListReportsHandler).WithMiddleware(auth),
		r.NewRoute("GET /api/reports/{id}").WithHandlerFunc(app.GetReportHandler).WithMiddleware(auth),
		r.NewRoute("PATCH /api/reports/{id}").WithHandlerFunc(app.UpdateReportHandler).WithMiddleware(auth),
		r.NewRoute("DELETE /api/reports/{id}").WithHandlerFunc(app.DeleteReportHandler).WithMiddleware(auth),

		// Pharmacy catalog. The static "trending" path wins over "{id}".
		r.NewRoute("POST /api/pharmacy").WithHandlerFunc(app.CreateMedicationHandler).WithMiddleware(auth),
		r.NewRoute("GET /api/pharmacy").WithHandlerFunc(app.ListMedicationsHandler).WithMiddleware(auth),
		r.NewRoute("GET /api/pharmacy/trending").WithHandlerFunc(app.TrendingMedicationsHandler).WithMiddleware(auth),
		r.NewRoute("GET /api/pharmacy/{id}").WithHandlerFunc(app.GetMedicationHandler).WithMiddleware(auth),
		r.NewRoute("PATCH /api/pharmacy/{id}").WithHandlerFunc(app.UpdateMedicationHandler).WithMiddleware(auth),
		r.NewRoute("DELETE /api/pharmacy/{id}").WithHandlerFunc(app.DeleteMedicationHandler).WithMiddleware(auth),

		// Assistant chat.
		r.NewRoute("POST /api/chat/sessions").WithHandlerFunc(app.CreateChatSessionHandler).WithMiddleware(auth),
		r.NewRoute("GET /api/chat/sessions").WithHandlerFunc(app.ListChatSessionsHandler).WithMiddleware(auth),
		r.NewRoute("GET /api/chat/sessions/{id}").WithHandlerFunc(app.GetChatSessionHandler).WithMiddleware(auth),
		r.NewRoute("DELETE /api/chat/sessions/{id}").WithHandlerFunc(app.DeleteChatSessionHandler).WithMiddleware(auth),
		r.NewRoute("POST /api/chat/messages").WithHandlerFunc(app.SendChatMessageHandler).WithMiddleware(auth),
	)
}
