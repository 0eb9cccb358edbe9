package server

// graphiqlPage is a minimal GraphiQL console loaded from the unpkg CDN,
// pointed at this server's /graphql endpoint (websocket included, so
// subscriptions can be tried from the browser).
const graphiqlPage = `<!DOCTYPE html>
<html>
<head>
	<title>Library GraphQL</title>
	<style>
		body { margin: 0; }
		#graphiql { height: 100vh; }
	</style>
	<link rel="stylesheet" href="https://unpkg.com/graphiql@3/graphiql.min.css" />
</head>
<body>
	<div id="graphiql">Loading…</div>
	<script src="https://unpkg.com/react@18/umd/react.production.min.js"></script>
	<script src="https://unpkg.com/react-dom@18/umd/react-dom.production.min.js"></script>
	<script src="https://unpkg.com/graphiql@3/graphiql.min.js"></script>
	<script>
		const wsProto = location.protocol === 'https:' ? 'wss:' : 'ws:';
		const fetcher = GraphiQL.createFetcher({
			url: '/graphql',
			subscriptionUrl: wsProto + '//' + location.host + '/graphql',
		});
		ReactDOM.createRoot(document.getElementById('graphiql'))
			.render(React.createElement(GraphiQL, { fetcher: fetcher }));
	</script>
</body>
</html>
`
