package controllers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the user and task resources on api.
func RegisterRoutes(api gin.IRouter, users *UserController, tasks *TaskController) {
	userRoutes := api.Group("/users")
	{
		userRoutes.GET("", users.List)
		userRoutes.POST("", users.Create)
		userRoutes.GET("/:id", users.Get)
		userRoutes.PUT("/:id", users.Update)
		userRoutes.DELETE("/:id", users.Delete)
	}

	taskRoutes := api.Group("/tasks")
	{
		taskRoutes.GET("", tasks.List)
		taskRoutes.POST("", tasks.Create)
		taskRoutes.GET("/:id", tasks.Get)
		taskRoutes.PUT("/:id", tasks.Update)
		taskRoutes.DELETE("/:id", tasks.Delete)
	}
}
