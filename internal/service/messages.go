package service

// Fixed user-facing replies.
const (
	GreetingReply = "Bonjour ! 👋 Je suis votre assistant spécialisé sur les sites " +
		"archéologiques de Tunisie. \n\n" +
		"Je peux répondre à vos questions sur:\n" +
		"• Carthage, Dougga, El Jem, Sbeïtla, Kerkouane, Bulla Regia, etc.\n" +
		"• L'histoire, l'architecture et les découvertes archéologiques\n" +
		"• Les périodes punique, romaine, byzantine...\n\n" +
		"Posez-moi une question !"

	OutOfScopeReply = "Désolé, je ne peux répondre qu'aux questions concernant " +
		"les sites archéologiques de Tunisie.\n\n" +
		"Exemples de questions valides:\n" +
		"• Quelles sont les particularités du théâtre romain de Dougga ?\n" +
		"• Parle-moi de l'amphithéâtre d'El Jem\n" +
		"• Quel est l'histoire de Carthage ?"

	NoResultsReply = "Je ne dispose pas d'information fiable sur ce point dans ma base de connaissances.\n\n" +
		"Reformulez votre question ou posez une question sur un site spécifique " +
		"(Carthage, Dougga, El Jem, Sbeïtla, Kerkouane, Bulla Regia, etc.)."

	UnavailableReply = "⚠️ Erreur: Ollama n'est pas accessible. Démarrez-le avec 'ollama serve'."

	generationFailedPrefix = "⚠️ Erreur lors de la génération: "
)
