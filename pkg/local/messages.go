package local

var (
	Welcome = NewSet("🤖 Welcome to the Simple Chatbot!\nType 'quit' to exit, 'clear' to clear history", map[Language]string{
		Spa: "🤖 ¡Bienvenida al chatbot!\nEscribe 'quit' para salir, 'clear' para borrar el historial",
	})
	Goodbye = NewSet("Goodbye! 👋", map[Language]string{
		Spa: "¡Adiós! 👋",
	})
	HistoryCleared = NewSet("Conversation history cleared.", map[Language]string{
		Spa: "Historial de conversación borrado.",
	})

	BuddyWelcome = NewSet("👨‍💻 Welcome to Code Buddy!\nYour friendly AI code helper\nType 'quit' to exit, 'clear' to clear history\nPrefix with 'error:', 'debug:' or 'concept:' for focused help, or type 'tips'", map[Language]string{
		Spa: "👨‍💻 ¡Bienvenida a Code Buddy!\nTu ayudante de código\nEscribe 'quit' para salir, 'clear' para borrar el historial\nUsa 'error:', 'debug:' o 'concept:' para ayuda específica, o escribe 'tips'",
	})
	BuddyGoodbye = NewSet("Great learning with you! Keep coding! 🚀", map[Language]string{
		Spa: "¡Fue genial aprender contigo! ¡Sigue programando! 🚀",
	})
	BuddyCleared = NewSet("Conversation cleared. Let's start fresh!", map[Language]string{
		Spa: "Conversación borrada. ¡Empecemos de nuevo!",
	})

	TelegramStart = NewSet("Welcome to the WCC Info Bot! Ask me anything about Women Coding Community. Use /new to clear the conversation.", map[Language]string{
		Spa: "¡Bienvenida al WCC Info Bot! Pregúntame lo que quieras sobre Women Coding Community. Usa /new para borrar la conversación.",
	})
	TelegramHelp = NewSet("Write something to start a conversation. Use /new to clear context and start a new conversation.", map[Language]string{
		Spa: "Escribe algo para empezar. Usa /new para borrar el contexto y empezar una nueva conversación.",
	})
	TelegramNew = NewSet("Context cleared. Let's start a new conversation!", map[Language]string{
		Spa: "Contexto borrado. ¡Empecemos una nueva conversación!",
	})
	UserNoAccess = NewSet("You are not allowed to use this bot", map[Language]string{
		Spa: "No tienes permiso para usar este bot",
	})
	UnknownCommand = NewSet("I don't know that command", map[Language]string{
		Spa: "No conozco ese comando",
	})
	ServerError = NewSet("Something wrong with me. Try later", map[Language]string{
		Spa: "Algo ha fallado. Inténtalo más tarde",
	})
)
